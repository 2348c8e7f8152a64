package models

import "time"

// Contact summarizes every message received from one email address
type Contact struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	MessageCount int       `json:"messageCount"`
	LastMessage  time.Time `json:"lastMessage"`
	HasUnread    bool      `json:"hasUnread"`
	IsStarred    bool      `json:"isStarred"`
}
