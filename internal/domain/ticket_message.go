package domain

// CommentType differentiates agent-only notes from customer-visible replies.
type CommentType string

const (
	CommentTypeInternal CommentType = "internal"
	CommentTypePublic   CommentType = "public"
)

// Comment captures a note in a ticket thread.
type Comment struct {
	CommentID   string      `json:"comment_id"`
	Content     string      `json:"content"`
	AuthorID    string      `json:"author_id"`
	AuthorName  *string     `json:"author_name,omitempty"`
	CommentType CommentType `json:"comment_type"`
	CreatedAt   UnixTime    `json:"created_at"`
}

// Clone returns a copy with its own author name.
func (c Comment) Clone() Comment {
	out := c
	out.AuthorName = clonePtr(c.AuthorName)
	return out
}
