package web

import (
	"contactdash/dashboard"
	"contactdash/middleware"
	"contactdash/models"
	"contactdash/utils"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	noticeKey   = "notice"
	noticeOKKey = "notice_ok"
)

// DashboardHandler renders the message dashboard and runs row actions
type DashboardHandler struct {
	ctrl     *dashboard.Controller
	sessions *session.Store
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(ctrl *dashboard.Controller, sessions *session.Store) *DashboardHandler {
	return &DashboardHandler{
		ctrl:     ctrl,
		sessions: sessions,
	}
}

type filterItem struct {
	Filter    dashboard.Filter
	LabelKey  string
	Count     int
	ShowCount bool
	Active    bool
	URL       string
}

type sortItem struct {
	Sort     dashboard.SortKey
	LabelKey string
	Active   bool
}

type row struct {
	models.Message
	Preview string
	Actions []models.Action
	Pending models.Action
}

type contactRow struct {
	models.Contact
	URL string
}

// Show renders the dashboard for the query in the URL. The list is refetched
// on every visit; a failed fetch keeps showing the previous list.
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	q := queryFrom(c.Query("search"), c.Query("filter"), c.Query("sort"))

	if err := h.ctrl.Load(c.UserContext()); err != nil {
		utils.Log.Warn("Failed to load messages: %v", err)
	}

	snap := h.ctrl.State().Snapshot()
	view := dashboard.Derive(snap.Messages, q)
	pending := h.ctrl.Tracker().Snapshot()

	rows := make([]row, 0, len(view.Messages))
	for _, m := range view.Messages {
		rows = append(rows, row{
			Message: m,
			Preview: utils.Preview(m.Message, previewLength),
			Actions: rowActions(m),
			Pending: pending[m.ID],
		})
	}

	contacts := make([]contactRow, 0, len(view.Contacts))
	for _, ct := range view.Contacts {
		contacts = append(contacts, contactRow{
			Contact: ct,
			URL:     "/contact?email=" + url.QueryEscape(ct.Email),
		})
	}

	_, emptying := pending[dashboard.DeleteAllKey]

	data := fiber.Map{
		"Localizer":  middleware.Localizer(c),
		"Lang":       c.Locals("lang"),
		"User":       c.Locals(userKey),
		"CSRFToken":  c.Locals("csrf"),
		"Query":      view.Query,
		"Filters":    filterItems(view),
		"Sorts":      sortItems(view.Query.Sort),
		"Counts":     view.Counts,
		"Rows":       rows,
		"Contacts":   contacts,
		"IsContacts": view.Query.Filter == dashboard.FilterContacts,
		"IsTrash":    view.Query.Filter == dashboard.FilterTrash,
		"Emptying":   emptying,
		"EmptyKey":   emptyKey(view.Query),
		"LoadError":  snap.Err,
	}
	if key, ok := h.takeNotice(c); key != "" {
		data["Notice"] = utils.T(middleware.Localizer(c), key)
		data["NoticeOK"] = ok
	}

	return c.Render("dashboard", data)
}

// HandleAction runs one row action (POST /action/:action/:id)
func (h *DashboardHandler) HandleAction(c *fiber.Ctx) error {
	action, err := models.ParseAction(c.Params("action"))
	if err != nil {
		return utils.BadRequestError(utils.T(middleware.Localizer(c), "error_invalid_request"), err)
	}
	id := c.Params("id")

	err = h.ctrl.Do(c.UserContext(), id, action)
	h.setNotice(c, dashboard.Notice{Action: string(action), Err: err})

	return c.Redirect("/?" + returnQuery(c))
}

// HandleEmptyTrash permanently deletes everything in the trash
func (h *DashboardHandler) HandleEmptyTrash(c *fiber.Ctx) error {
	// the controller empties what it last saw; make that the current trash
	if err := h.ctrl.Load(c.UserContext()); err != nil {
		h.setNotice(c, dashboard.Notice{Action: string(models.ActionDeleteAll), Err: err})
		return c.Redirect("/?" + returnQuery(c))
	}

	err := h.ctrl.EmptyTrash(c.UserContext())
	h.setNotice(c, dashboard.Notice{Action: string(models.ActionDeleteAll), Err: err})

	return c.Redirect("/?" + returnQuery(c))
}

// HandleRefresh refetches the list on request
func (h *DashboardHandler) HandleRefresh(c *fiber.Ctx) error {
	err := h.ctrl.Refresh(c.UserContext())
	h.setNotice(c, dashboard.Notice{Action: "refresh", Err: err})

	return c.Redirect("/?" + returnQuery(c))
}

// HandleContact shows every message from one address
func (h *DashboardHandler) HandleContact(c *fiber.Ctx) error {
	email := c.Query("email")
	h.setNotice(c, dashboard.Notice{Action: "contact"})

	v := url.Values{}
	v.Set("filter", string(dashboard.FilterAll))
	v.Set("search", email)
	return c.Redirect("/?" + v.Encode())
}

func (h *DashboardHandler) setNotice(c *fiber.Ctx, n dashboard.Notice) {
	sess, err := h.sessions.Get(c)
	if err != nil {
		utils.Log.Warn("Failed to store notice: %v", err)
		return
	}
	sess.Set(noticeKey, n.Key())
	sess.Set(noticeOKKey, n.OK())
	if err := sess.Save(); err != nil {
		utils.Log.Warn("Failed to store notice: %v", err)
	}
}

// takeNotice returns and clears the pending notice
func (h *DashboardHandler) takeNotice(c *fiber.Ctx) (string, bool) {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return "", false
	}
	key, _ := sess.Get(noticeKey).(string)
	if key == "" {
		return "", false
	}
	ok, _ := sess.Get(noticeOKKey).(bool)

	sess.Delete(noticeKey)
	sess.Delete(noticeOKKey)
	if err := sess.Save(); err != nil {
		utils.Log.Warn("Failed to clear notice: %v", err)
	}
	return key, ok
}

func queryFrom(search, filter, sort string) dashboard.Query {
	return dashboard.Query{
		Search: search,
		Filter: dashboard.ParseFilter(filter),
		Sort:   dashboard.ParseSort(sort),
	}
}

// returnQuery rebuilds the dashboard query from the posted form so the user
// lands back on the same view
func returnQuery(c *fiber.Ctx) string {
	return encodeQuery(queryFrom(c.FormValue("search"), c.FormValue("filter"), c.FormValue("sort")))
}

func encodeQuery(q dashboard.Query) string {
	v := url.Values{}
	v.Set("filter", string(q.Filter))
	v.Set("sort", string(q.Sort))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v.Encode()
}

// rowActions lists the buttons shown for m, in display order
func rowActions(m models.Message) []models.Action {
	if m.IsDeleted {
		return []models.Action{models.ActionRestore, models.ActionPermanentDelete}
	}

	var actions []models.Action
	if !m.IsRead {
		actions = append(actions, models.ActionRead)
	}
	if m.IsStarred {
		actions = append(actions, models.ActionUnstar)
	} else {
		actions = append(actions, models.ActionStar)
	}
	if m.IsArchived {
		actions = append(actions, models.ActionUnarchive)
	} else {
		actions = append(actions, models.ActionArchive)
	}
	return append(actions, models.ActionDelete)
}

func filterItems(view dashboard.View) []filterItem {
	counts := map[dashboard.Filter]int{
		dashboard.FilterAll:      view.Counts.All,
		dashboard.FilterUnread:   view.Counts.Unread,
		dashboard.FilterStarred:  view.Counts.Starred,
		dashboard.FilterArchived: view.Counts.Archived,
		dashboard.FilterContacts: view.Counts.Contacts,
		dashboard.FilterTrash:    view.Counts.Trash,
	}

	items := make([]filterItem, 0, len(dashboard.Filters))
	for _, f := range dashboard.Filters {
		count, ok := counts[f]
		q := view.Query
		q.Filter = f
		items = append(items, filterItem{
			Filter:    f,
			LabelKey:  labelKey("filter_", string(f)),
			Count:     count,
			ShowCount: ok,
			Active:    f == view.Query.Filter,
			URL:       "/?" + encodeQuery(q),
		})
	}
	return items
}

func sortItems(active dashboard.SortKey) []sortItem {
	items := make([]sortItem, 0, len(dashboard.SortKeys))
	for _, s := range dashboard.SortKeys {
		items = append(items, sortItem{
			Sort:     s,
			LabelKey: "sort_" + string(s),
			Active:   s == active,
		})
	}
	return items
}

// emptyKey picks the empty-state text for q
func emptyKey(q dashboard.Query) string {
	if q.Search != "" {
		return "empty_search"
	}
	switch q.Filter {
	case dashboard.FilterAll:
		return "empty_all"
	case dashboard.FilterTrash:
		return "empty_trash_view"
	case dashboard.FilterUnread, dashboard.FilterStarred, dashboard.FilterArchived,
		dashboard.FilterHighPriority, dashboard.FilterContacts:
		return labelKey("empty_", string(q.Filter))
	}
	return "empty_filter"
}

// labelKey turns a filter name into a message id ("high-priority" -> "filter_high_priority")
func labelKey(prefix, name string) string {
	return prefix + strings.ReplaceAll(name, "-", "_")
}
