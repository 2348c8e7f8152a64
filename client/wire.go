package client

import (
	"contactdash/models"
	"time"
)

// listResponse matches GET /all
type listResponse struct {
	Messages []wireMessage `json:"messages"`
}

// wireMessage accepts the record shapes older servers produced: "_id" for the
// id and "createdAt" for the creation time.
type wireMessage struct {
	ID         string `json:"id"`
	LegacyID   string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	CreatedAt  string `json:"createdAt"`
	IsRead     bool   `json:"isRead"`
	IsStarred  bool   `json:"isStarred"`
	IsArchived bool   `json:"isArchived"`
	IsDeleted  bool   `json:"isDeleted"`
	Priority   string `json:"priority"`
}

// toModel applies defaults: missing flags are false, a missing or unknown
// priority is medium and an unparsable time is the zero time.
func (w wireMessage) toModel() models.Message {
	id := w.ID
	if id == "" {
		id = w.LegacyID
	}

	ts := w.Timestamp
	if ts == "" {
		ts = w.CreatedAt
	}

	priority, err := models.ParsePriority(w.Priority)
	if err != nil {
		priority = models.PriorityMedium
	}

	return models.Message{
		ID:         id,
		Name:       w.Name,
		Email:      w.Email,
		Message:    w.Message,
		Timestamp:  parseTime(ts),
		IsRead:     w.IsRead,
		IsStarred:  w.IsStarred,
		IsArchived: w.IsArchived,
		IsDeleted:  w.IsDeleted,
		Priority:   priority,
	}
}

// parseTime parses an RFC3339 time string
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
