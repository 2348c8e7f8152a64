// Package dashboard holds the client side of the contact dashboard: the
// derivation pipeline that turns the full message set into the rendered view,
// the state container that mirrors the store, the per-row action tracker and
// the controller tying them to a backend.
package dashboard

import (
	"contactdash/models"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Filter selects a category of messages
type Filter string

const (
	FilterAll          Filter = "all"
	FilterUnread       Filter = "unread"
	FilterStarred      Filter = "starred"
	FilterArchived     Filter = "archived"
	FilterTrash        Filter = "trash"
	FilterHighPriority Filter = "high-priority"
	FilterContacts     Filter = "contacts"
)

// Filters lists every category in sidebar order
var Filters = []Filter{
	FilterAll, FilterUnread, FilterStarred, FilterArchived,
	FilterHighPriority, FilterContacts, FilterTrash,
}

// ParseFilter maps unrecognized values to FilterAll
func ParseFilter(s string) Filter {
	for _, f := range Filters {
		if string(f) == s {
			return f
		}
	}
	return FilterAll
}

// SortKey orders the filtered messages
type SortKey string

const (
	SortNewest   SortKey = "newest"
	SortOldest   SortKey = "oldest"
	SortPriority SortKey = "priority"
	SortName     SortKey = "name"
)

// SortKeys lists every sort order
var SortKeys = []SortKey{SortNewest, SortOldest, SortPriority, SortName}

// ParseSort maps unrecognized values to SortNewest
func ParseSort(s string) SortKey {
	for _, k := range SortKeys {
		if string(k) == s {
			return k
		}
	}
	return SortNewest
}

// Query is what the user picked in the dashboard header and sidebar
type Query struct {
	Search string
	Filter Filter
	Sort   SortKey
}

// Counts drive the sidebar badges. They are computed over the whole message
// set and never depend on the active query.
type Counts struct {
	All      int `json:"all"`
	Unread   int `json:"unread"`
	Starred  int `json:"starred"`
	Archived int `json:"archived"`
	Contacts int `json:"contacts"`
	Trash    int `json:"trash"`
	Total    int `json:"total"`
}

// View is the ordered, filtered result the UI renders
type View struct {
	Query    Query
	Messages []models.Message
	Counts   Counts
	// Contacts is only populated for FilterContacts
	Contacts []models.Contact
}

// Derive computes the view for q from the full message set. all is not modified.
func Derive(all []models.Message, q Query) View {
	q.Filter = ParseFilter(string(q.Filter))
	q.Sort = ParseSort(string(q.Sort))

	search := strings.ToLower(q.Search)
	messages := make([]models.Message, 0, len(all))
	for _, m := range all {
		if search != "" && !MatchesSearch(m, search) {
			continue
		}
		if !InFilter(m, q.Filter) {
			continue
		}
		messages = append(messages, m)
	}

	SortMessages(messages, q.Sort)

	view := View{
		Query:    q,
		Messages: messages,
		Counts:   CountMessages(all),
	}
	if q.Filter == FilterContacts {
		view.Contacts = GroupContacts(messages)
	}
	return view
}

// MatchesSearch reports whether the lowercase search text occurs in the
// name, email or body of m, ignoring case
func MatchesSearch(m models.Message, search string) bool {
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(m.Name), search) ||
		strings.Contains(strings.ToLower(m.Email), search) ||
		strings.Contains(strings.ToLower(m.Message), search)
}

// InFilter reports whether m belongs to the category f. Deleted messages only
// belong to the trash.
func InFilter(m models.Message, f Filter) bool {
	switch f {
	case FilterUnread:
		return !m.IsDeleted && !m.IsRead
	case FilterStarred:
		return !m.IsDeleted && m.IsStarred
	case FilterArchived:
		return !m.IsDeleted && m.IsArchived
	case FilterTrash:
		return m.IsDeleted
	case FilterHighPriority:
		return !m.IsDeleted && m.Priority == models.PriorityHigh
	default:
		return !m.IsDeleted
	}
}

// SortMessages orders messages in place. The sort is stable.
func SortMessages(messages []models.Message, key SortKey) {
	var less func(a, b models.Message) bool

	switch key {
	case SortOldest:
		less = func(a, b models.Message) bool { return a.Timestamp.Before(b.Timestamp) }
	case SortPriority:
		less = func(a, b models.Message) bool { return a.Priority.Rank() > b.Priority.Rank() }
	case SortName:
		// collators are not safe for concurrent use
		col := collate.New(language.English)
		less = func(a, b models.Message) bool { return col.CompareString(a.Name, b.Name) < 0 }
	default:
		less = func(a, b models.Message) bool { return a.Timestamp.After(b.Timestamp) }
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return less(messages[i], messages[j])
	})
}

// CountMessages partitions the full message set for the sidebar badges
func CountMessages(all []models.Message) Counts {
	var c Counts
	for _, m := range all {
		if m.IsDeleted {
			c.Trash++
			continue
		}
		c.All++
		if !m.IsRead {
			c.Unread++
		}
		if m.IsStarred {
			c.Starred++
		}
		if m.IsArchived {
			c.Archived++
		}
	}
	c.Contacts = c.All
	c.Total = c.All
	return c
}

// GroupContacts collapses messages by email address. The first message seen
// for an address names the contact; groups are ordered by their most recent
// message, newest first.
func GroupContacts(messages []models.Message) []models.Contact {
	index := make(map[string]int)
	contacts := []models.Contact{}

	for _, m := range messages {
		i, ok := index[m.Email]
		if !ok {
			index[m.Email] = len(contacts)
			contacts = append(contacts, models.Contact{
				Name:         m.Name,
				Email:        m.Email,
				MessageCount: 1,
				LastMessage:  m.Timestamp,
				HasUnread:    !m.IsRead,
				IsStarred:    m.IsStarred,
			})
			continue
		}

		c := &contacts[i]
		c.MessageCount++
		if !m.IsRead {
			c.HasUnread = true
		}
		if m.IsStarred {
			c.IsStarred = true
		}
		if m.Timestamp.After(c.LastMessage) {
			c.LastMessage = m.Timestamp
		}
	}

	sort.SliceStable(contacts, func(i, j int) bool {
		return contacts[i].LastMessage.After(contacts[j].LastMessage)
	})
	return contacts
}
