package cmd

import (
	"contactdash/client"
	"contactdash/dashboard"
	"contactdash/models"
	"contactdash/storage"
	"contactdash/utils"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newMessagesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List and manage contact messages",
		Long: `Work with the stored messages from a terminal.

Commands talk to the running server's API (see --api). Use --local to open
the store directly instead; bolt stores can only be opened by one process.`,
	}

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", "", "API base URL (default from config)")
	cmd.PersistentFlags().BoolVar(&opts.local, "local", false, "open the store directly instead of calling the API")

	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newCountsCmd(opts))
	cmd.AddCommand(newActCmd(opts))
	cmd.AddCommand(newEmptyTrashCmd(opts))
	cmd.AddCommand(newCreateCmd(opts))
	return cmd
}

// openController returns a loaded controller and a cleanup func
func openController(cmd *cobra.Command, opts *options) (*dashboard.Controller, func(), error) {
	var backend dashboard.Backend
	cleanup := func() {}

	if opts.local {
		store, err := storage.Open(opts.cfg.Storage)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		backend = dashboard.NewStoreBackend(store, opts.cfg.API.ValidateCreate)
		cleanup = func() { store.Close() }
	} else {
		url := opts.apiURL
		if url == "" {
			url = opts.cfg.APIBase()
		}
		c, err := client.New(client.Config{URL: url})
		if err != nil {
			return nil, nil, err
		}
		backend = c
	}

	ctrl := dashboard.NewController(backend)
	if err := ctrl.Load(cmd.Context()); err != nil {
		cleanup()
		return nil, nil, err
	}
	return ctrl, cleanup, nil
}

func newListCmd(opts *options) *cobra.Command {
	var search, filter, sort string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List messages",
		Long: `List messages the way the dashboard shows them.

Filters: all, unread, starred, archived, high-priority, contacts, trash.
Sort orders: newest, oldest, priority, name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, cleanup, err := openController(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			view := ctrl.View(dashboard.Query{
				Search: search,
				Filter: dashboard.ParseFilter(filter),
				Sort:   dashboard.ParseSort(sort),
			})
			printView(cmd.OutOrStdout(), view)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "only show messages whose name, email or body contains this text")
	cmd.Flags().StringVar(&filter, "filter", string(dashboard.FilterAll), "message category")
	cmd.Flags().StringVar(&sort, "sort", string(dashboard.SortNewest), "sort order")
	return cmd
}

func newCountsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Show the sidebar counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, cleanup, err := openController(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			c := ctrl.View(dashboard.Query{}).Counts
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  All:      %d\n", c.All)
			fmt.Fprintf(out, "  Unread:   %d\n", c.Unread)
			fmt.Fprintf(out, "  Starred:  %d\n", c.Starred)
			fmt.Fprintf(out, "  Archived: %d\n", c.Archived)
			fmt.Fprintf(out, "  Contacts: %d\n", c.Contacts)
			fmt.Fprintf(out, "  Trash:    %d\n", c.Trash)
			return nil
		},
	}
}

func newActCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "act <action> <id>",
		Short: "Apply an action to one message",
		Long: `Apply an action to one message.

Actions: read, star, unstar, archive, unarchive, delete, restore, permanentDelete.
"delete" moves the message to the trash; "permanentDelete" removes it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := models.ParseAction(args[0])
			if err != nil {
				return err
			}

			ctrl, cleanup, err := openController(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			err = ctrl.Do(cmd.Context(), args[1], action)
			printNotice(cmd.OutOrStdout(), dashboard.Notice{Action: string(action), Err: err})
			return err
		},
	}
}

func newEmptyTrashCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "empty-trash",
		Short: "Permanently delete every message in the trash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, cleanup, err := openController(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			n := len(ctrl.State().TrashIDs())
			err = ctrl.EmptyTrash(cmd.Context())
			printNotice(cmd.OutOrStdout(), dashboard.Notice{Action: string(models.ActionDeleteAll), Err: err})
			if err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", utils.TPlural(utils.Localizer, "message_count", n))
			}
			return err
		},
	}
}

func newCreateCmd(opts *options) *cobra.Command {
	var msg models.NewMessage

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Submit a message as the contact form would",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, cleanup, err := openController(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			err = ctrl.Create(cmd.Context(), msg)
			printNotice(cmd.OutOrStdout(), dashboard.Notice{Action: "create", Err: err})
			return err
		},
	}

	cmd.Flags().StringVar(&msg.Name, "name", "", "sender name")
	cmd.Flags().StringVar(&msg.Email, "email", "", "sender email")
	cmd.Flags().StringVar(&msg.Message, "message", "", "message body")
	cmd.Flags().StringVar(&msg.Priority, "priority", "", "high, medium or low (default medium)")
	return cmd
}

var (
	bold   = color.New(color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
)

func printNotice(w io.Writer, n dashboard.Notice) {
	text := utils.T(utils.Localizer, n.Key())
	if n.OK() {
		fmt.Fprintln(w, green(text))
		return
	}
	fmt.Fprintf(w, "%s: %v\n", red(text), n.Err)
}

func printView(w io.Writer, view dashboard.View) {
	if view.Query.Filter == dashboard.FilterContacts {
		for _, c := range view.Contacts {
			name := c.Name
			if c.HasUnread {
				name = bold(name)
			}
			star := " "
			if c.IsStarred {
				star = yellow("★")
			}
			fmt.Fprintf(w, "%s %s <%s>  %s  %s\n", star, name, c.Email,
				utils.TPlural(utils.Localizer, "message_count", c.MessageCount),
				faint(c.LastMessage.Local().Format("Jan 02, 2006 15:04")))
		}
		if len(view.Contacts) == 0 {
			fmt.Fprintln(w, faint(utils.T(utils.Localizer, "empty_contacts")))
		}
		return
	}

	for _, m := range view.Messages {
		name := m.Name
		if !m.IsRead {
			name = bold(name)
		}
		star := " "
		if m.IsStarred {
			star = yellow("★")
		}
		priority := string(m.Priority)
		if m.Priority == models.PriorityHigh {
			priority = red(priority)
		}
		fmt.Fprintf(w, "%s %s <%s>  %s  %s  %s\n", star, name, m.Email, priority,
			faint(m.Timestamp.Local().Format("Jan 02, 2006 15:04")), faint(m.ID))
		fmt.Fprintf(w, "    %s\n", utils.Preview(m.Message, 100))
	}
	if len(view.Messages) == 0 {
		fmt.Fprintln(w, faint(utils.T(utils.Localizer, "empty_filter")))
	}
}
