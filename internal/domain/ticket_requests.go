package domain

// TicketListFilters narrows the paged ticket listing. Zero values are not sent.
type TicketListFilters struct {
	Status          TicketStatus
	Priority        TicketPriority
	AssignedAgentID string
	Limit           int
	Offset          int
}

// ArchivedTicketQuery narrows the archived ticket listing. Zero values are not sent.
type ArchivedTicketQuery struct {
	CustomerEmail string
	StartDate     string
	EndDate       string
	Limit         int
	Offset        int
}

// TicketSortField names the columns the advanced filter can sort by.
type TicketSortField string

const (
	SortByUpdatedAt       TicketSortField = "updated_at"
	SortByCreatedAt       TicketSortField = "created_at"
	SortByPriority        TicketSortField = "priority"
	SortByStatus          TicketSortField = "status"
	SortByResolvedAt      TicketSortField = "resolved_at"
	SortByFirstResponseAt TicketSortField = "first_response_at"
	SortByReopenedAt      TicketSortField = "reopened_at"
)

// TicketFilterPayload is the body of the advanced filter call.
type TicketFilterPayload struct {
	Statuses         []TicketStatus   `json:"statuses,omitempty"`
	Priorities       []TicketPriority `json:"priorities,omitempty"`
	TicketTypes      []TicketType     `json:"ticket_types,omitempty"`
	Assigned         string           `json:"assigned,omitempty"`
	AssignedAgentIDs []string         `json:"assigned_agent_ids,omitempty"`
	Keyword          string           `json:"keyword,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	Categories       []string         `json:"categories,omitempty"`
	CreatedStart     *UnixTime        `json:"created_start,omitempty"`
	CreatedEnd       *UnixTime        `json:"created_end,omitempty"`
	UpdatedStart     *UnixTime        `json:"updated_start,omitempty"`
	UpdatedEnd       *UnixTime        `json:"updated_end,omitempty"`
	Limit            int              `json:"limit,omitempty"`
	Offset           int              `json:"offset,omitempty"`
	SortBy           TicketSortField  `json:"sort_by,omitempty"`
	SortDesc         *bool            `json:"sort_desc,omitempty"`
}

// CreateManualTicketPayload creates a ticket outside of a chat session.
type CreateManualTicketPayload struct {
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	TicketType        TicketType     `json:"ticket_type"`
	Priority          TicketPriority `json:"priority"`
	Customer          CustomerInfo   `json:"customer"`
	AssignedAgentID   string         `json:"assigned_agent_id,omitempty"`
	AssignedAgentName string         `json:"assigned_agent_name,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// UpdateTicketPayload patches a ticket. Nil fields are left untouched by the server.
type UpdateTicketPayload struct {
	Status            *TicketStatus   `json:"status,omitempty"`
	Priority          *TicketPriority `json:"priority,omitempty"`
	AssignedAgentID   *string         `json:"assigned_agent_id,omitempty"`
	AssignedAgentName *string         `json:"assigned_agent_name,omitempty"`
	Note              string          `json:"note,omitempty"`
	MetadataUpdates   map[string]any  `json:"metadata_updates,omitempty"`
	ChangeReason      string          `json:"change_reason,omitempty"`
}

// AssignTicketPayload hands a ticket to an agent.
type AssignTicketPayload struct {
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name,omitempty"`
	Note      string `json:"note,omitempty"`
}

// TicketCommentPayload adds a comment to a ticket.
type TicketCommentPayload struct {
	Content       string      `json:"content"`
	CommentType   CommentType `json:"comment_type,omitempty"`
	NotifyAgentID string      `json:"notify_agent_id,omitempty"`
}

// ReopenTicketPayload reopens a resolved or closed ticket.
type ReopenTicketPayload struct {
	Reason  string `json:"reason"`
	Comment string `json:"comment,omitempty"`
}

// ArchiveTicketPayload archives a ticket.
type ArchiveTicketPayload struct {
	Reason string `json:"reason,omitempty"`
}

// ExportFormat is the rendering requested from the export endpoint.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatPDF  ExportFormat = "pdf"
)

// Extension returns the file extension used for fallback filenames.
func (f ExportFormat) Extension() string {
	switch f {
	case ExportFormatXLSX:
		return "xlsx"
	case ExportFormatPDF:
		return "pdf"
	default:
		return "csv"
	}
}

// ExportRequest asks the server to render a filtered ticket set.
type ExportRequest struct {
	Format  ExportFormat         `json:"format"`
	Filters *TicketFilterPayload `json:"filters,omitempty"`
}

// ExportFile is a rendered export and the filename it should be saved as.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
