package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-console/internal/domain"
)

func (a *console) templatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Reply templates",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			templates, err := a.templates.FetchTemplates(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(templates)
		},
	}

	var (
		ticketID string
		vars     []string
	)
	render := &cobra.Command{
		Use:   "render <template-id>",
		Short: "Render a template, optionally against a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.RenderTemplateRequest{TicketID: ticketID, Variables: map[string]string{}}
			for _, kv := range vars {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("variable %q is not name=value", kv)
				}
				req.Variables[name] = value
			}
			rendered, err := a.templates.RenderTemplate(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return printJSON(rendered)
		},
	}
	render.Flags().StringVar(&ticketID, "ticket", "", "ticket whose fields fill the placeholders")
	render.Flags().StringArrayVar(&vars, "var", nil, "placeholder value as name=value")

	cmd.AddCommand(list, render)
	return cmd
}

func (a *console) assistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assist",
		Short: "Help requests between agents",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "Show received and sent assist requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inbox, err := a.assist.FetchRequests(cmd.Context(), domain.AssistStatus(status))
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"received": inbox.Received,
				"sent":     inbox.Sent,
				"pending":  a.assist.PendingCount(),
			})
		},
	}
	list.Flags().StringVar(&status, "status", string(domain.AssistStatusAll), "pending, answered or all")

	answer := &cobra.Command{
		Use:   "answer <request-id> <text>",
		Short: "Answer an assist request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.assist.AnswerRequest(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(req)
		},
	}

	cmd.AddCommand(list, answer)
	return cmd
}

func (a *console) transferCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Session transfers",
	}

	pending := &cobra.Command{
		Use:   "pending",
		Short: "List transfers waiting for you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			requests, err := a.transfers.FetchPending(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(requests)
		},
	}

	var note string
	respond := &cobra.Command{
		Use:   "respond <request-id> <accept|decline>",
		Short: "Accept or decline a transfer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.transfers.Respond(cmd.Context(), args[0], domain.TransferAction(args[1]), note); err != nil {
				return err
			}
			return printJSON(map[string]any{"id": args[0], "action": args[1]})
		},
	}
	respond.Flags().StringVar(&note, "note", "", "response note")

	history := &cobra.Command{
		Use:   "history <session>",
		Short: "Show the transfer history of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.transfers.FetchHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(records)
		},
	}

	cmd.AddCommand(pending, respond, history)
	return cmd
}
