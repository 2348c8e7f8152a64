package dashboard

import (
	"contactdash/models"
	"errors"
	"testing"
)

func TestStateTransitions(t *testing.T) {
	s := NewState()

	s.FetchStarted()
	if snap := s.Snapshot(); !snap.Loading || snap.Fetched {
		t.Errorf("after start: %+v", snap)
	}

	s.FetchSucceeded([]models.Message{{ID: "1"}, {ID: "2", IsDeleted: true}})
	snap := s.Snapshot()
	if snap.Loading || !snap.Fetched || len(snap.Messages) != 2 {
		t.Errorf("after success: %+v", snap)
	}
	if got := s.TrashIDs(); len(got) != 1 || got[0] != "2" {
		t.Errorf("TrashIDs = %v, want [2]", got)
	}

	s.FetchStarted()
	s.FetchFailed(errors.New("offline"))
	snap = s.Snapshot()
	if snap.Loading || snap.Err == nil || len(snap.Messages) != 2 {
		t.Errorf("after failure: %+v", snap)
	}

	s.ClearError()
	if s.Snapshot().Err != nil {
		t.Error("ClearError left the error")
	}
}

func TestStateSnapshotIsCopy(t *testing.T) {
	s := NewState()
	in := []models.Message{{ID: "1"}}
	s.FetchSucceeded(in)
	in[0].ID = "changed"

	snap := s.Snapshot()
	snap.Messages[0].IsRead = true

	if got := s.Messages()[0]; got.ID != "1" || got.IsRead {
		t.Errorf("state shares memory with callers: %+v", got)
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	tr.Set("a", models.ActionStar)
	tr.Set("a", models.ActionArchive)
	tr.Set(DeleteAllKey, models.ActionDeleteAll)

	if a, ok := tr.Get("a"); !ok || a != models.ActionArchive {
		t.Errorf("Get(a) = %q, %v; want archive", a, ok)
	}
	if tr.Len() != 2 {
		t.Errorf("Len = %d, want 2", tr.Len())
	}

	snap := tr.Snapshot()
	tr.Clear("a")
	if _, ok := tr.Get("a"); ok {
		t.Error("Clear did not remove a")
	}
	if _, ok := snap["a"]; !ok {
		t.Error("snapshot changed after Clear")
	}
	tr.Clear("never-set")
}
