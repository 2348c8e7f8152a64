package models

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency a sender attached to a contact message
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for sorting (high > medium > low)
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the three known priorities
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// ParsePriority normalizes s; an empty string yields medium
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PriorityMedium, nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// Flag names one of the independent boolean states of a message
type Flag string

const (
	FlagRead     Flag = "isRead"
	FlagStarred  Flag = "isStarred"
	FlagArchived Flag = "isArchived"
	FlagDeleted  Flag = "isDeleted"
)

// Message represents a contact-form submission
type Message struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	IsRead     bool      `json:"isRead"`
	IsStarred  bool      `json:"isStarred"`
	IsArchived bool      `json:"isArchived"`
	IsDeleted  bool      `json:"isDeleted"`
	Priority   Priority  `json:"priority"`
}

// Set assigns value to the given flag. It returns false for an unknown flag.
func (m *Message) Set(flag Flag, value bool) bool {
	switch flag {
	case FlagRead:
		m.IsRead = value
	case FlagStarred:
		m.IsStarred = value
	case FlagArchived:
		m.IsArchived = value
	case FlagDeleted:
		m.IsDeleted = value
	default:
		return false
	}
	return true
}

// NewMessage carries the creatable fields of a message
type NewMessage struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// Validate rejects submissions with missing required fields or an unknown priority
func (n NewMessage) Validate() error {
	switch {
	case strings.TrimSpace(n.Name) == "":
		return fmt.Errorf("name is required")
	case strings.TrimSpace(n.Email) == "":
		return fmt.Errorf("email is required")
	case strings.TrimSpace(n.Message) == "":
		return fmt.Errorf("message is required")
	}
	if _, err := ParsePriority(n.Priority); err != nil {
		return err
	}
	return nil
}

// Build turns the submission into a fresh message with every flag cleared.
// Unknown priorities fall back to medium.
func (n NewMessage) Build(id string, now time.Time) Message {
	p, err := ParsePriority(n.Priority)
	if err != nil {
		p = PriorityMedium
	}
	return Message{
		ID:        id,
		Name:      n.Name,
		Email:     n.Email,
		Message:   n.Message,
		Timestamp: now,
		Priority:  p,
	}
}
