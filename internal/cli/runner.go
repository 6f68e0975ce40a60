package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Run executes the command line and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := newRootCommand(a)
	if args == nil {
		// cobra falls back to os.Args on nil
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	a.close()
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			ui.Fail(stderr, ee.msg)
		}
		return ee.code
	}
	// flag parsing and unknown subcommands
	ui.Fail(stderr, err.Error())
	fmt.Fprintln(stderr)
	fmt.Fprint(stderr, root.UsageString())
	return 2
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "todo",
		Short:         "todo - a tiny CLI",
		SilenceErrors: true,
		SilenceUsage:  true,
		Example: `  todo add "Buy milk"
  todo ls
  todo done 2
  todo rm 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return &exitError{code: 2}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.opt.ConfigPath, "config", "", "path to a YAML config file (env TADA_CONFIG)")
	pf.StringVar(&a.opt.Storage, "storage", "", "storage backend: file, sqlite, memory, none")
	pf.StringVar(&a.opt.Data, "data", "", "file or database path for the storage backend")
	pf.StringVar(&a.opt.LogLevel, "log-level", "", "diagnostic level: debug, info, warn, error")
	pf.StringVar(&a.opt.Theme, "theme", "", "output theme: classic, neon, mono")
	pf.BoolVar(&a.opt.Group, "group", false, "group output by pending/done")

	root.AddCommand(
		listCommand(a),
		addCommand(a),
		toggleCommand(a),
		removeCommand(a),
		clearCommand(a),
		toggleAllCommand(a),
		resetCommand(a),
		statsCommand(a),
		tuiCommand(a),
	)
	return root
}

// openFor opens the store with the command's flag set.
func (a *app) openFor(cmd *cobra.Command) (*store.TodoStore, error) {
	return a.open(func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	})
}

// -------------- subcommands ----------------

func listCommand(a *app) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List items",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openFor(cmd)
			if err != nil {
				return err
			}
			items := st.All()
			switch filter {
			case "", "all":
			case "active":
				items = st.Active()
			case "completed", "done":
				items = st.Completed()
			default:
				return usageErr("ls: unknown filter %q (all, active, completed)", filter)
			}

			t := ui.Current()
			d, p := st.CompletedCount(), st.RemainingCount()
			lines := []string{
				ui.Header(d, p, st.TotalCount()),
				ui.C(t.Muted, ui.ProgressBar(d, d+p, 28)),
				"",
			}
			if a.cfg.Group {
				pend, done := itemsSplit(items)
				lines = append(lines, ui.GroupedLines(pend, done)...)
			} else {
				lines = append(lines, ui.ItemLines(items)...)
			}
			lines = append(lines, "", ui.C(t.Muted, "Tip: add with `todo add \"Buy milk\"`"))
			ui.Panel(a.stdout, lines)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "which items to show: all, active, completed")
	return cmd
}

func addCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a new item (title can be multiple words)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageErr("usage: todo add <title...>")
			}
			st, err := a.openFor(cmd)
			if err != nil {
				return err
			}
			it, ok := st.Add(strings.Join(args, " "))
			if !ok {
				return usageErr("add: empty title")
			}
			ui.OK(a.stdout, fmt.Sprintf("added #%d", it.ID))
			return nil
		},
	}
}

func toggleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle done for the item with id",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg("done", args)
			if err != nil {
				return err
			}
			st, err := a.openFor(cmd)
			if err != nil {
				return err
			}
			if !st.Toggle(id) {
				return notFound(a, id)
			}
			ui.OK(a.stdout, "toggled")
			return nil
		},
	}
}

func removeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove the item with id",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg("rm", args)
			if err != nil {
				return err
			}
			st, err := a.openFor(cmd)
			if err != nil {
				return err
			}
			if !st.Remove(id) {
				return notFound(a, id)
			}
			ui.OK(a.stdout, "removed")
			return nil
		},
	}
}

func clearCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every completed item",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openFor(cmd)
			if err != nil {
				return err
			}
			n := st.ClearCompleted()
			ui.OK(a.stdout, fmt.Sprintf("cleared %d completed", n))
			return nil
		},
	}
}

func toggleAllCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-all",
		Short: "Mark everything done, or everything active if all are done",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openFor(cmd)
			if err != nil {
				return err
			}
			st.ToggleAll()
			switch {
			case st.TotalCount() == 0:
				ui.OK(a.stdout, "nothing to toggle")
			case st.AllCompleted():
				ui.OK(a.stdout, "all done")
			default:
				ui.OK(a.stdout, "all active")
			}
			return nil
		},
	}
}

func resetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the sample items",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openFor(cmd)
			if err != nil {
				return err
			}
			st.Reset()
			ui.OK(a.stdout, "reset")
			return nil
		},
	}
}

func statsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openFor(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "total: %d\n", st.TotalCount())
			fmt.Fprintf(a.stdout, "active: %d\n", st.RemainingCount())
			fmt.Fprintf(a.stdout, "completed: %d\n", st.CompletedCount())
			fmt.Fprintf(a.stdout, "all completed: %t\n", st.AllCompleted())
			return nil
		},
	}
}

func tuiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive list",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openFor(cmd)
			if err != nil {
				return err
			}
			if err := tui.Run(st); err != nil {
				return runtimeErr("tui: %v", err)
			}
			return nil
		},
	}
}

// -------------- helpers --------------

func idArg(cmd string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, usageErr("usage: todo %s <id>", cmd)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, usageErr("%s: not a number: %s", cmd, args[0])
	}
	return n, nil
}

func notFound(a *app, id int) error {
	ui.Fail(a.stderr, fmt.Sprintf("no item with id %d", id))
	fmt.Fprintln(a.stderr, ui.Dim("Hint: run `todo ls` to see valid ids"))
	return &exitError{code: 2}
}

func itemsSplit(items []model.Item) (pending, done []model.Item) {
	for _, it := range items {
		if it.Done {
			done = append(done, it)
		} else {
			pending = append(pending, it)
		}
	}
	return
}
