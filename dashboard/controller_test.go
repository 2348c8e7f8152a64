package dashboard

import (
	"contactdash/config"
	"contactdash/models"
	"contactdash/storage"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fakeBackend keeps messages in memory and fails on demand
type fakeBackend struct {
	mu       sync.Mutex
	messages []models.Message
	failIDs  map[string]error
	failList error
	// gate, when set, blocks Perform until closed
	gate chan struct{}
}

func (f *fakeBackend) List(ctx context.Context) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	out := make([]models.Message, len(f.messages))
	copy(out, f.messages)
	return out, nil
}

func (f *fakeBackend) Create(ctx context.Context, msg models.NewMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg.Build(msg.Name, day(1)))
	return nil
}

func (f *fakeBackend) Perform(ctx context.Context, id string, action models.Action) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIDs[id]; err != nil {
		return err
	}
	for i := range f.messages {
		if f.messages[i].ID != id {
			continue
		}
		if action == models.ActionPermanentDelete {
			f.messages = append(f.messages[:i], f.messages[i+1:]...)
			return nil
		}
		flag, value, _ := action.Patch()
		f.messages[i].Set(flag, value)
		return nil
	}
	return storage.ErrNotFound
}

func newFakeController(t *testing.T, msgs ...models.Message) (*Controller, *fakeBackend, *[]Notice) {
	t.Helper()
	backend := &fakeBackend{messages: msgs, failIDs: map[string]error{}}
	c := NewController(backend)

	var mu sync.Mutex
	notices := &[]Notice{}
	c.OnNotice(func(n Notice) {
		mu.Lock()
		defer mu.Unlock()
		*notices = append(*notices, n)
	})

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c, backend, notices
}

func noticeKeys(notices []Notice) []string {
	keys := []string{}
	for _, n := range notices {
		keys = append(keys, n.Key())
	}
	return keys
}

func TestDoRefetchesOnSuccess(t *testing.T) {
	ctx := context.Background()
	c, _, notices := newFakeController(t, models.Message{ID: "x", Name: "X", Timestamp: day(1)})

	for _, a := range []models.Action{models.ActionRead, models.ActionStar, models.ActionArchive} {
		if err := c.Do(ctx, "x", a); err != nil {
			t.Fatalf("Do(%s): %v", a, err)
		}
	}

	got := c.State().Messages()[0]
	if !got.IsRead || !got.IsStarred || !got.IsArchived {
		t.Errorf("state not refetched: %+v", got)
	}
	want := []string{"notice_read_ok", "notice_star_ok", "notice_archive_ok"}
	if diff := cmp.Diff(want, noticeKeys(*notices)); diff != "" {
		t.Errorf("notices (-want +got):\n%s", diff)
	}
	if c.Tracker().Len() != 0 {
		t.Errorf("tracker not cleared: %v", c.Tracker().Snapshot())
	}
}

func TestDoFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	c, backend, notices := newFakeController(t, models.Message{ID: "x", Name: "X"})
	backend.failIDs["x"] = errors.New("boom")

	if err := c.Do(ctx, "x", models.ActionStar); err == nil {
		t.Fatal("Do succeeded, want error")
	}
	if c.State().Messages()[0].IsStarred {
		t.Error("failed action changed state")
	}
	if diff := cmp.Diff([]string{"notice_star_failed"}, noticeKeys(*notices)); diff != "" {
		t.Errorf("notices (-want +got):\n%s", diff)
	}
	if _, ok := c.Tracker().Get("x"); ok {
		t.Error("tracker still marks x after failure")
	}
}

func TestDoUnknownID(t *testing.T) {
	c, _, _ := newFakeController(t)
	err := c.Do(context.Background(), "missing", models.ActionRead)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Do(missing) = %v, want ErrNotFound", err)
	}
}

func TestTrackerMarksRowWhileInFlight(t *testing.T) {
	c, backend, _ := newFakeController(t,
		models.Message{ID: "x"},
		models.Message{ID: "y"},
	)
	backend.gate = make(chan struct{})

	done := make(chan error)
	go func() { done <- c.Do(context.Background(), "x", models.ActionDelete) }()

	// wait until the action is registered
	for {
		if a, ok := c.Tracker().Get("x"); ok {
			if a != models.ActionDelete {
				t.Errorf("tracker(x) = %q, want delete", a)
			}
			break
		}
		time.Sleep(time.Millisecond)
	}
	if _, ok := c.Tracker().Get("y"); ok {
		t.Error("unrelated row marked in flight")
	}

	close(backend.gate)
	if err := <-done; err != nil {
		t.Fatalf("Do: %v", err)
	}
	if _, ok := c.Tracker().Get("x"); ok {
		t.Error("tracker not cleared after completion")
	}
}

func TestEmptyTrashFailureLeavesState(t *testing.T) {
	c, backend, notices := newFakeController(t,
		models.Message{ID: "a", IsDeleted: true},
		models.Message{ID: "b", IsDeleted: true},
		models.Message{ID: "c"},
	)
	backend.failIDs["b"] = errors.New("disk full")

	if err := c.EmptyTrash(context.Background()); err == nil {
		t.Fatal("EmptyTrash succeeded, want error")
	}
	if got := len(c.State().TrashIDs()); got != 2 {
		t.Errorf("trash size after failure = %d, want 2 (state untouched)", got)
	}
	if diff := cmp.Diff([]string{"notice_deleteAll_failed"}, noticeKeys(*notices)); diff != "" {
		t.Errorf("notices (-want +got):\n%s", diff)
	}
	if _, ok := c.Tracker().Get(DeleteAllKey); ok {
		t.Error("deleteAll still tracked")
	}
}

func TestRefreshFailureKeepsList(t *testing.T) {
	c, backend, notices := newFakeController(t, models.Message{ID: "x"})
	backend.failList = errors.New("connection refused")

	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh succeeded, want error")
	}
	snap := c.State().Snapshot()
	if len(snap.Messages) != 1 || snap.Err == nil || snap.Loading {
		t.Errorf("snapshot after failed refresh = %+v", snap)
	}
	if diff := cmp.Diff([]string{"notice_refresh_failed"}, noticeKeys(*notices)); diff != "" {
		t.Errorf("notices (-want +got):\n%s", diff)
	}

	backend.failList = nil
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if c.State().Snapshot().Err != nil {
		t.Error("error not cleared by successful refresh")
	}
}

func newStoreController(t *testing.T) (*Controller, storage.MessageStore) {
	t.Helper()
	store, err := storage.Open(config.StorageConfig{Driver: "bolt", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewController(NewStoreBackend(store, true)), store
}

func TestSoftDeleteThenEmptyTrash(t *testing.T) {
	ctx := context.Background()
	c, store := newStoreController(t)

	for _, name := range []string{"x", "y"} {
		if err := c.Create(ctx, models.NewMessage{Name: name, Email: name + "@example.com", Message: "hi"}); err != nil {
			t.Fatalf("Create(%s): %v", name, err)
		}
	}
	view := c.View(Query{Sort: SortOldest})
	x := view.Messages[0].ID

	if err := c.Do(ctx, x, models.ActionDelete); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if got := c.View(Query{Filter: FilterTrash}).Messages; len(got) != 1 || got[0].ID != x {
		t.Fatalf("trash = %v, want [%s]", ids(got), x)
	}

	if err := c.EmptyTrash(ctx); err != nil {
		t.Fatalf("EmptyTrash: %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, m := range all {
		if m.ID == x {
			t.Errorf("%s still stored after emptying trash", x)
		}
	}
	if len(all) != 1 {
		t.Errorf("store holds %d messages, want 1", len(all))
	}
	if n := c.View(Query{}).Counts.Trash; n != 0 {
		t.Errorf("trash count = %d, want 0", n)
	}
}

func TestSoftDeleteRestoreKeepsFlags(t *testing.T) {
	ctx := context.Background()
	c, _ := newStoreController(t)

	if err := c.Create(ctx, models.NewMessage{Name: "x", Email: "x@example.com", Message: "hi", Priority: "high"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := c.State().Messages()[0].ID
	for _, a := range []models.Action{models.ActionStar, models.ActionArchive} {
		if err := c.Do(ctx, id, a); err != nil {
			t.Fatalf("Do(%s): %v", a, err)
		}
	}
	before := c.State().Messages()[0]

	for _, a := range []models.Action{models.ActionDelete, models.ActionRestore} {
		if err := c.Do(ctx, id, a); err != nil {
			t.Fatalf("Do(%s): %v", a, err)
		}
	}
	if diff := cmp.Diff(before, c.State().Messages()[0]); diff != "" {
		t.Errorf("delete+restore changed the message (-want +got):\n%s", diff)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	c, _ := newStoreController(t)
	var got []Notice
	c.OnNotice(func(n Notice) { got = append(got, n) })

	err := c.Create(context.Background(), models.NewMessage{Email: "x@example.com", Message: "hi"})
	if err == nil {
		t.Fatal("Create without name succeeded")
	}
	if diff := cmp.Diff([]string{"notice_create_failed"}, noticeKeys(got)); diff != "" {
		t.Errorf("notices (-want +got):\n%s", diff)
	}
	if len(c.State().Messages()) != 0 {
		t.Error("invalid message reached state")
	}
}

func TestStoreBackendPermanentDelete(t *testing.T) {
	ctx := context.Background()
	c, store := newStoreController(t)
	if err := c.Create(ctx, models.NewMessage{Name: "x", Email: "x@example.com", Message: "hi"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := c.State().Messages()[0].ID

	if err := c.Do(ctx, id, models.ActionPermanentDelete); err != nil {
		t.Fatalf("permanent delete: %v", err)
	}
	all, _ := store.List(ctx)
	if len(all) != 0 || len(c.State().Messages()) != 0 {
		t.Errorf("message survived permanent delete: store=%d state=%d", len(all), len(c.State().Messages()))
	}
}

// recordingNotifier collects StoreBackend announcements as strings
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingNotifier) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingNotifier) Created(id string) { r.add("created") }

func (r *recordingNotifier) Updated(id string, flag models.Flag, value bool) {
	if value {
		r.add("updated " + string(flag))
		return
	}
	r.add("updated !" + string(flag))
}

func (r *recordingNotifier) Deleted(id string) { r.add("deleted") }

func TestStoreBackendNotifies(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(config.StorageConfig{Driver: "bolt", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	rec := &recordingNotifier{}
	c := NewController(NewStoreBackend(store, true).WithNotifier(rec))

	if err := c.Create(ctx, models.NewMessage{Name: "x", Email: "x@example.com", Message: "hi"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// rejected and failed mutations stay silent
	c.Create(ctx, models.NewMessage{Email: "y@example.com", Message: "hi"})
	c.Do(ctx, "missing", models.ActionStar)

	id := c.State().Messages()[0].ID
	for _, a := range []models.Action{models.ActionStar, models.ActionUnstar, models.ActionDelete} {
		if err := c.Do(ctx, id, a); err != nil {
			t.Fatalf("%s: %v", a, err)
		}
	}
	if err := c.EmptyTrash(ctx); err != nil {
		t.Fatalf("EmptyTrash: %v", err)
	}

	want := []string{"created", "updated isStarred", "updated !isStarred", "updated isDeleted", "deleted"}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("announcements (-want +got):\n%s", diff)
	}
}

func TestStoreBackendWithoutValidation(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(config.StorageConfig{Driver: "bolt", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	b := NewStoreBackend(store, false)
	if err := b.Create(ctx, models.NewMessage{Email: "x@example.com", Message: "hi"}); err != nil {
		t.Fatalf("Create without name: %v", err)
	}
	all, _ := store.List(ctx)
	if len(all) != 1 {
		t.Errorf("stored %d messages, want 1", len(all))
	}
}
