package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/domain"
)

func (a *console) ticketsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "List, inspect and change tickets",
	}
	cmd.AddCommand(
		a.ticketsListCommand(),
		a.ticketsSearchCommand(),
		a.ticketsFilterCommand(),
		a.ticketsArchivedCommand(),
		a.ticketsGetCommand(),
		a.ticketsAssignCommand(),
		a.ticketsCloseCommand(),
		a.ticketsReopenCommand(),
		a.ticketsArchiveCommand(),
		a.ticketsCommentCommand(),
		a.ticketsBatchAssignCommand(),
		a.ticketsBatchCloseCommand(),
		a.ticketsBatchPriorityCommand(),
		a.ticketsExportCommand(),
		a.ticketsSLACommand(),
		a.ticketsRecommendCommand(),
	)
	return cmd
}

func (a *console) ticketsListCommand() *cobra.Command {
	var (
		filters  domain.TicketListFilters
		status   string
		priority string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch a page of tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters.Status = domain.TicketStatus(status)
			filters.Priority = domain.TicketPriority(priority)
			page, err := a.tickets.FetchTickets(cmd.Context(), filters)
			if err != nil {
				return err
			}
			return printJSON(page)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only tickets in this status")
	cmd.Flags().StringVar(&priority, "priority", "", "only tickets with this priority")
	cmd.Flags().StringVar(&filters.AssignedAgentID, "agent", "", "only tickets assigned to this agent id")
	cmd.Flags().IntVar(&filters.Limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&filters.Offset, "offset", 0, "page offset")
	return cmd
}

func (a *console) ticketsSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search tickets by keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tickets, err := a.tickets.SearchTickets(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(tickets)
		},
	}
}

func (a *console) ticketsFilterCommand() *cobra.Command {
	var (
		payload    domain.TicketFilterPayload
		statuses   []string
		priorities []string
		sortBy     string
		ascending  bool
	)
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Run the advanced ticket filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, s := range statuses {
				payload.Statuses = append(payload.Statuses, domain.TicketStatus(s))
			}
			for _, p := range priorities {
				payload.Priorities = append(payload.Priorities, domain.TicketPriority(p))
			}
			payload.SortBy = domain.TicketSortField(sortBy)
			if cmd.Flags().Changed("asc") {
				desc := !ascending
				payload.SortDesc = &desc
			}
			page, err := a.tickets.FilterTickets(cmd.Context(), payload)
			if err != nil {
				return err
			}
			return printJSON(page)
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "statuses to include")
	cmd.Flags().StringSliceVar(&priorities, "priority", nil, "priorities to include")
	cmd.Flags().StringSliceVar(&payload.AssignedAgentIDs, "agent", nil, "assigned agent ids")
	cmd.Flags().StringVar(&payload.Assigned, "assigned", "", "assigned or unassigned")
	cmd.Flags().StringVar(&payload.Keyword, "keyword", "", "keyword to match")
	cmd.Flags().StringSliceVar(&payload.Tags, "tag", nil, "metadata tags")
	cmd.Flags().StringSliceVar(&payload.Categories, "category", nil, "metadata categories")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort field")
	cmd.Flags().BoolVar(&ascending, "asc", false, "sort ascending")
	cmd.Flags().IntVar(&payload.Limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&payload.Offset, "offset", 0, "page offset")
	return cmd
}

func (a *console) ticketsArchivedCommand() *cobra.Command {
	var q domain.ArchivedTicketQuery
	cmd := &cobra.Command{
		Use:   "archived",
		Short: "List archived tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := a.tickets.FetchArchivedTickets(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printJSON(page)
		},
	}
	cmd.Flags().StringVar(&q.CustomerEmail, "email", "", "customer email")
	cmd.Flags().StringVar(&q.StartDate, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&q.EndDate, "to", "", "last day, YYYY-MM-DD")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "page offset")
	return cmd
}

func (a *console) ticketsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <ticket-id>",
		Short: "Show one ticket with its comments and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticket, err := a.tickets.FetchTicketByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(ticket)
		},
	}
}

func (a *console) ticketsAssignCommand() *cobra.Command {
	var payload domain.AssignTicketPayload
	cmd := &cobra.Command{
		Use:   "assign <ticket-id> <agent-id>",
		Short: "Assign a ticket to an agent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload.AgentID = args[1]
			ticket, err := a.tickets.AssignTicket(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}
			return printJSON(ticket)
		},
	}
	cmd.Flags().StringVar(&payload.AgentName, "name", "", "agent display name")
	cmd.Flags().StringVar(&payload.Note, "note", "", "assignment note")
	return cmd
}

func (a *console) ticketsCloseCommand() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "close <ticket-id>",
		Short: "Close a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			closed := domain.TicketStatusClosed
			ticket, err := a.tickets.UpdateTicket(cmd.Context(), args[0], domain.UpdateTicketPayload{
				Status:       &closed,
				ChangeReason: reason,
			})
			if err != nil {
				return err
			}
			return printJSON(ticket)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the ticket is closed")
	return cmd
}

func (a *console) ticketsReopenCommand() *cobra.Command {
	var payload domain.ReopenTicketPayload
	cmd := &cobra.Command{
		Use:   "reopen <ticket-id> <reason>",
		Short: "Reopen a resolved or closed ticket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload.Reason = args[1]
			ticket, err := a.tickets.ReopenTicket(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}
			return printJSON(ticket)
		},
	}
	cmd.Flags().StringVar(&payload.Comment, "comment", "", "comment added with the reopen")
	return cmd
}

func (a *console) ticketsArchiveCommand() *cobra.Command {
	var payload domain.ArchiveTicketPayload
	cmd := &cobra.Command{
		Use:   "archive <ticket-id>",
		Short: "Archive a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticket, err := a.tickets.ArchiveTicket(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}
			return printJSON(ticket)
		},
	}
	cmd.Flags().StringVar(&payload.Reason, "reason", "", "archive reason")
	return cmd
}

func (a *console) ticketsCommentCommand() *cobra.Command {
	var (
		payload domain.TicketCommentPayload
		public  bool
	)
	cmd := &cobra.Command{
		Use:   "comment <ticket-id> <text>",
		Short: "Add a comment to a ticket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload.Content = args[1]
			if public {
				payload.CommentType = domain.CommentTypePublic
			}
			comment, err := a.tickets.AddComment(cmd.Context(), args[0], payload)
			if err != nil && comment.CommentID == "" {
				return err
			}
			if err != nil {
				// the comment exists, only the refresh failed
				a.logger.Warn("ticket refresh failed", zap.String("ticket_id", args[0]), zap.Error(err))
			}
			return printJSON(comment)
		},
	}
	cmd.Flags().BoolVar(&public, "public", false, "visible to the customer")
	cmd.Flags().StringVar(&payload.NotifyAgentID, "notify", "", "agent id to notify")
	return cmd
}

func (a *console) ticketsBatchAssignCommand() *cobra.Command {
	var req domain.BatchAssignRequest
	cmd := &cobra.Command{
		Use:   "batch-assign <agent-id> <ticket-id>...",
		Short: "Assign several tickets to one agent",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.TargetAgentID = args[0]
			req.TicketIDs = args[1:]
			return printBatch(a.tickets.BatchAssign(cmd.Context(), req))
		},
	}
	cmd.Flags().StringVar(&req.TargetAgentName, "name", "", "agent display name")
	cmd.Flags().StringVar(&req.Note, "note", "", "assignment note")
	return cmd
}

func (a *console) ticketsBatchCloseCommand() *cobra.Command {
	var req domain.BatchCloseRequest
	cmd := &cobra.Command{
		Use:   "batch-close <ticket-id>...",
		Short: "Close several tickets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.TicketIDs = args
			return printBatch(a.tickets.BatchClose(cmd.Context(), req))
		},
	}
	cmd.Flags().StringVar(&req.CloseReason, "reason", "", "why the tickets are closed")
	cmd.Flags().StringVar(&req.Comment, "comment", "", "comment added to each ticket")
	return cmd
}

func (a *console) ticketsBatchPriorityCommand() *cobra.Command {
	var req domain.BatchPriorityRequest
	cmd := &cobra.Command{
		Use:   "batch-priority <priority> <ticket-id>...",
		Short: "Change the priority of several tickets",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Priority = domain.TicketPriority(args[0])
			req.TicketIDs = args[1:]
			return printBatch(a.tickets.BatchPriority(cmd.Context(), req))
		},
	}
	cmd.Flags().StringVar(&req.Reason, "reason", "", "why the priority changes")
	return cmd
}

// printBatch prints partial results too. A batch with failed items is not an error.
func printBatch(result domain.BatchResult, err error) error {
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (a *console) ticketsExportCommand() *cobra.Command {
	var (
		format   string
		output   string
		statuses []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download tickets as csv, xlsx or pdf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := domain.ExportRequest{Format: domain.ExportFormat(format)}
			if len(statuses) > 0 {
				filters := &domain.TicketFilterPayload{}
				for _, s := range statuses {
					filters.Statuses = append(filters.Statuses, domain.TicketStatus(s))
				}
				req.Filters = filters
			}
			file, err := a.tickets.ExportTickets(cmd.Context(), req)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = file.Filename
			}
			if err := os.WriteFile(path, file.Data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			return printJSON(map[string]any{"path": path, "content_type": file.ContentType, "bytes": len(file.Data)})
		},
	}
	cmd.Flags().StringVar(&format, "format", string(domain.ExportFormatCSV), "csv, xlsx or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write, defaults to the server's filename")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "statuses to include")
	return cmd
}

func (a *console) ticketsSLACommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sla",
		Short: "Show the SLA summary and current alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, summaryErr := a.tickets.FetchSLASummary(cmd.Context())
			alerts, alertsErr := a.tickets.FetchSLAAlerts(cmd.Context())
			if err := errors.Join(summaryErr, alertsErr); err != nil {
				return err
			}
			return printJSON(map[string]any{"summary": summary, "alerts": alerts})
		},
	}
}

func (a *console) ticketsRecommendCommand() *cobra.Command {
	var (
		payload    domain.SmartAssignPayload
		ticketType string
		priority   string
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Ask which agent should take a ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload.TicketType = domain.TicketType(ticketType)
			payload.Priority = domain.TicketPriority(priority)
			rec, err := a.tickets.RecommendAssignment(cmd.Context(), payload)
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}
	cmd.Flags().StringVar(&ticketType, "type", string(domain.TicketTypeAfterSale), "ticket type")
	cmd.Flags().StringVar(&priority, "priority", string(domain.TicketPriorityMedium), "ticket priority")
	cmd.Flags().StringVar(&payload.Category, "category", "", "ticket category")
	cmd.Flags().StringSliceVar(&payload.Tags, "tag", nil, "ticket tags")
	cmd.Flags().StringVar(&payload.CustomerEmail, "email", "", "customer email")
	return cmd
}
