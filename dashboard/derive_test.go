package dashboard

import (
	"contactdash/models"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC)
}

func ids(messages []models.Message) []string {
	out := []string{}
	for _, m := range messages {
		out = append(out, m.ID)
	}
	return out
}

// fixture covers every flag combination the filters care about
func fixture() []models.Message {
	return []models.Message{
		{ID: "1", Name: "Alice", Email: "alice@example.com", Message: "Quote request", Timestamp: day(1), Priority: models.PriorityHigh},
		{ID: "2", Name: "bob", Email: "bob@example.com", Message: "Hello", Timestamp: day(2), IsRead: true, IsStarred: true, Priority: models.PriorityLow},
		{ID: "3", Name: "Carol", Email: "carol@example.com", Message: "Invoice", Timestamp: day(3), IsRead: true, IsArchived: true, Priority: models.PriorityMedium},
		{ID: "4", Name: "Alice", Email: "alice@example.com", Message: "Follow up", Timestamp: day(4), IsRead: true, Priority: models.PriorityMedium},
		{ID: "5", Name: "Dave", Email: "dave@example.com", Message: "Spam", Timestamp: day(5), IsDeleted: true, IsStarred: true, IsArchived: true, Priority: models.PriorityHigh},
	}
}

func TestFilters(t *testing.T) {
	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterAll, []string{"4", "3", "2", "1"}},
		{FilterUnread, []string{"1"}},
		{FilterStarred, []string{"2"}},
		{FilterArchived, []string{"3"}},
		{FilterTrash, []string{"5"}},
		{FilterHighPriority, []string{"1"}},
		{FilterContacts, []string{"4", "3", "2", "1"}},
		{Filter("bogus"), []string{"4", "3", "2", "1"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := Derive(fixture(), Query{Filter: tt.filter})
			if diff := cmp.Diff(tt.want, ids(got.Messages)); diff != "" {
				t.Errorf("filter %q mismatch (-want +got):\n%s", tt.filter, diff)
			}
		})
	}
}

func TestDeletedOnlyInTrash(t *testing.T) {
	for _, f := range Filters {
		view := Derive(fixture(), Query{Filter: f})
		for _, m := range view.Messages {
			if m.IsDeleted && f != FilterTrash {
				t.Errorf("deleted message %s shown under %q", m.ID, f)
			}
			if !m.IsDeleted && f == FilterTrash {
				t.Errorf("live message %s shown in trash", m.ID)
			}
		}
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name   string
		search string
		filter Filter
		want   []string
	}{
		{"name case-insensitive", "ALICE", FilterAll, []string{"4", "1"}},
		{"email", "bob@", FilterAll, []string{"2"}},
		{"body", "invoice", FilterAll, []string{"3"}},
		{"no match", "zzz", FilterAll, []string{}},
		{"search keeps filter", "alice", FilterUnread, []string{"1"}},
		{"search does not reach trash from all", "spam", FilterAll, []string{}},
		{"search inside trash", "spam", FilterTrash, []string{"5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(fixture(), Query{Search: tt.search, Filter: tt.filter})
			if diff := cmp.Diff(tt.want, ids(got.Messages)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Narrowing by search must equal filtering first and searching the result.
func TestSearchIsPureNarrowing(t *testing.T) {
	for _, f := range Filters {
		want := []string{}
		for _, m := range Derive(fixture(), Query{Filter: f}).Messages {
			if MatchesSearch(m, "a") {
				want = append(want, m.ID)
			}
		}
		got := Derive(fixture(), Query{Filter: f, Search: "a"})
		if diff := cmp.Diff(want, ids(got.Messages)); diff != "" {
			t.Errorf("filter %q: search changed more than the text match (-want +got):\n%s", f, diff)
		}
	}
}

func TestSortOrders(t *testing.T) {
	tests := []struct {
		sort SortKey
		want []string
	}{
		{SortNewest, []string{"4", "3", "2", "1"}},
		{SortOldest, []string{"1", "2", "3", "4"}},
		// medium ties keep store order
		{SortPriority, []string{"1", "3", "4", "2"}},
		{SortName, []string{"1", "4", "2", "3"}},
		{SortKey("bogus"), []string{"4", "3", "2", "1"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			got := Derive(fixture(), Query{Sort: tt.sort})
			if diff := cmp.Diff(tt.want, ids(got.Messages)); diff != "" {
				t.Errorf("sort %q mismatch (-want +got):\n%s", tt.sort, diff)
			}
		})
	}
}

func TestPrioritySortIsStable(t *testing.T) {
	msgs := []models.Message{
		{ID: "l1", Priority: models.PriorityLow},
		{ID: "m1", Priority: models.PriorityMedium},
		{ID: "h1", Priority: models.PriorityHigh},
		{ID: "m2", Priority: models.PriorityMedium},
		{ID: "h2", Priority: models.PriorityHigh},
		{ID: "l2", Priority: models.PriorityLow},
	}
	SortMessages(msgs, SortPriority)
	want := []string{"h1", "h2", "m1", "m2", "l1", "l2"}
	if diff := cmp.Diff(want, ids(msgs)); diff != "" {
		t.Errorf("priority sort mismatch (-want +got):\n%s", diff)
	}
}

func TestNewestVersusPriority(t *testing.T) {
	all := []models.Message{
		{ID: "A", Name: "A", Priority: models.PriorityHigh, Timestamp: day(2)},
		{ID: "B", Name: "B", Priority: models.PriorityLow, Timestamp: day(3)},
	}
	if diff := cmp.Diff([]string{"B", "A"}, ids(Derive(all, Query{Sort: SortNewest}).Messages)); diff != "" {
		t.Errorf("newest (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B"}, ids(Derive(all, Query{Sort: SortPriority}).Messages)); diff != "" {
		t.Errorf("priority (-want +got):\n%s", diff)
	}
}

func TestCountsIgnoreQuery(t *testing.T) {
	want := Counts{All: 4, Unread: 1, Starred: 1, Archived: 1, Contacts: 4, Trash: 1, Total: 4}

	for _, q := range []Query{
		{},
		{Filter: FilterTrash},
		{Filter: FilterStarred, Search: "bob"},
		{Search: "nothing matches this"},
		{Filter: FilterContacts, Sort: SortName},
	} {
		got := Derive(fixture(), q).Counts
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("counts for %+v (-want +got):\n%s", q, diff)
		}
	}
}

func TestDeriveDoesNotMutateInput(t *testing.T) {
	all := fixture()
	before := ids(all)
	Derive(all, Query{Sort: SortName})
	if diff := cmp.Diff(before, ids(all)); diff != "" {
		t.Errorf("input reordered (-want +got):\n%s", diff)
	}
}

func TestGroupContacts(t *testing.T) {
	view := Derive(fixture(), Query{Filter: FilterContacts})

	want := []models.Contact{
		{Name: "Alice", Email: "alice@example.com", MessageCount: 2, LastMessage: day(4), HasUnread: true},
		{Name: "Carol", Email: "carol@example.com", MessageCount: 1, LastMessage: day(3)},
		{Name: "bob", Email: "bob@example.com", MessageCount: 1, LastMessage: day(2), IsStarred: true},
	}
	if diff := cmp.Diff(want, view.Contacts); diff != "" {
		t.Errorf("contacts mismatch (-want +got):\n%s", diff)
	}

	if got := Derive(fixture(), Query{}).Contacts; got != nil {
		t.Errorf("contacts computed outside contacts filter: %v", got)
	}
}

func TestGroupContactsFollowsSearch(t *testing.T) {
	view := Derive(fixture(), Query{Filter: FilterContacts, Search: "follow"})
	if len(view.Contacts) != 1 || view.Contacts[0].MessageCount != 1 {
		t.Fatalf("contacts = %+v, want one alice contact with one message", view.Contacts)
	}
	if !view.Contacts[0].LastMessage.Equal(day(4)) {
		t.Errorf("last message = %v, want %v", view.Contacts[0].LastMessage, day(4))
	}
}
