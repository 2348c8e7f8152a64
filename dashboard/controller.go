package dashboard

import (
	"contactdash/models"
	"contactdash/utils"
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// emptyTrashConcurrency bounds the parallel permanent deletes of EmptyTrash
const emptyTrashConcurrency = 8

// Notice is the outcome of a user action, shown to the user as a transient toast
type Notice struct {
	Action string
	Err    error
}

// OK reports whether the action succeeded
func (n Notice) OK() bool {
	return n.Err == nil
}

// Key is the translation id of the toast text
func (n Notice) Key() string {
	if n.Err != nil {
		return "notice_" + n.Action + "_failed"
	}
	return "notice_" + n.Action + "_ok"
}

// Controller runs user actions against a Backend and keeps State in sync.
// Every successful mutation is followed by a full refetch.
type Controller struct {
	backend Backend
	state   *State
	tracker *Tracker
	log     *utils.Logger

	mu       sync.RWMutex
	onNotice func(Notice)
}

func NewController(backend Backend) *Controller {
	return &Controller{
		backend: backend,
		state:   NewState(),
		tracker: NewTracker(),
		log:     utils.Log.WithField("component", "dashboard"),
	}
}

// OnNotice registers fn to receive every action outcome
func (c *Controller) OnNotice(fn func(Notice)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onNotice = fn
}

func (c *Controller) State() *State {
	return c.state
}

func (c *Controller) Tracker() *Tracker {
	return c.tracker
}

// View derives the rendered view from the current state
func (c *Controller) View(q Query) View {
	return Derive(c.state.Messages(), q)
}

// Refresh refetches the message list on user request
func (c *Controller) Refresh(ctx context.Context) error {
	err := c.fetch(ctx)
	c.notify("refresh", err)
	return err
}

// Load fetches the message list without emitting a notice
func (c *Controller) Load(ctx context.Context) error {
	return c.fetch(ctx)
}

// Do performs action on the message id. The row is marked in flight until the
// call returns, whatever the outcome.
func (c *Controller) Do(ctx context.Context, id string, action models.Action) error {
	c.tracker.Set(id, action)
	defer c.tracker.Clear(id)

	err := c.backend.Perform(ctx, id, action)
	if err != nil {
		c.log.WithFields(map[string]interface{}{
			"id":     id,
			"action": action,
		}).Warn("Action failed: %v", err)
		err = errors.Wrapf(err, "%s %s", action, id)
	} else {
		err = c.fetch(ctx)
	}

	c.notify(string(action), err)
	return err
}

// Create submits a new message, then refetches
func (c *Controller) Create(ctx context.Context, msg models.NewMessage) error {
	err := c.backend.Create(ctx, msg)
	if err != nil {
		err = errors.Wrap(err, "create")
	} else {
		err = c.fetch(ctx)
	}

	c.notify("create", err)
	return err
}

// EmptyTrash permanently deletes every message currently in the trash. The
// deletes run concurrently; if any fails the state is left untouched.
func (c *Controller) EmptyTrash(ctx context.Context) error {
	c.tracker.Set(DeleteAllKey, models.ActionDeleteAll)
	defer c.tracker.Clear(DeleteAllKey)

	ids := c.state.TrashIDs()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(emptyTrashConcurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := c.backend.Perform(gctx, id, models.ActionPermanentDelete); err != nil {
				return errors.Wrapf(err, "permanently delete %s", id)
			}
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		c.log.Warn("Emptying trash failed: %v", err)
	} else {
		c.log.Debug("Emptied trash (%d messages)", len(ids))
		err = c.fetch(ctx)
	}

	c.notify(string(models.ActionDeleteAll), err)
	return err
}

func (c *Controller) fetch(ctx context.Context) error {
	c.state.FetchStarted()

	list, err := c.backend.List(ctx)
	if err != nil {
		err = errors.Wrap(err, "fetch messages")
		c.state.FetchFailed(err)
		return err
	}

	c.state.FetchSucceeded(list)
	return nil
}

func (c *Controller) notify(action string, err error) {
	c.mu.RLock()
	fn := c.onNotice
	c.mu.RUnlock()

	if fn != nil {
		fn(Notice{Action: action, Err: err})
	}
}
