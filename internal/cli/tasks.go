package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tgienger/todo/internal/input"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/view"
)

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func newAddCmd(env *environment, sess func() *session) *cobra.Command {
	var form input.TaskForm

	cmd := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a task",
		Example: `  todo add "Buy groceries" --category shopping --due tomorrow --tags "food, weekly"
  todo add Call the dentist --priority high`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form.Text = strings.Join(args, " ")
			in, err := form.Build(env.now())
			if err != nil {
				return err
			}
			id := sess().store.Create(in)
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %d: %s\n", id, in.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Category, "category", "", "Work, Personal, Shopping or Health (default Work)")
	cmd.Flags().StringVarP(&form.Priority, "priority", "p", "", "low, medium or high (default medium)")
	cmd.Flags().StringVarP(&form.Due, "due", "d", "", "due date: YYYY-MM-DD, today or tomorrow")
	cmd.Flags().StringVarP(&form.Tags, "tags", "t", "", "comma-separated tags")
	return cmd
}

func newListCmd(env *environment, sess func() *session) *cobra.Command {
	var status, category, search, sortKey string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Example: `  todo list --status active --sort priority
  todo list --category health --search gym`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := view.DefaultSpec()
			var err error
			if spec.Status, err = view.ParseStatus(status); err != nil {
				return err
			}
			if spec.Category, err = view.ParseCategoryFilter(category); err != nil {
				return err
			}
			if spec.Sort, err = view.ParseSortKey(sortKey); err != nil {
				return err
			}
			spec.Search = search

			s := sess()
			r := view.NewComputer(s.cfg.Language()).View(s.store, spec)
			out := cmd.OutOrStdout()
			if len(r.Tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
			} else {
				printTasks(out, r.Tasks)
			}
			fmt.Fprintln(out)
			printStats(out, r.Stats)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", string(view.StatusAll), "all, active or completed")
	cmd.Flags().StringVar(&category, "category", string(view.CategoryAll), "all or a category")
	cmd.Flags().StringVarP(&search, "search", "s", "", "show tasks whose text or tags contain this")
	cmd.Flags().StringVar(&sortKey, "sort", string(view.SortDueDate), "dueDate, priority or alphabetical")
	return cmd
}

func printTasks(w io.Writer, tasks []models.Task) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tTASK\tCATEGORY\tPRIORITY\tDUE\tSUBTASKS\tTAGS")
	for _, t := range tasks {
		done := " "
		if t.Completed {
			done = "x"
		}
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		subs := "-"
		if len(t.Subtasks) > 0 {
			subs = fmt.Sprintf("%d/%d", t.CompletedSubtasks(), len(t.Subtasks))
		}
		fmt.Fprintf(tw, "%d\t[%s]\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, done, t.Text, t.Category, t.Priority, due, subs, strings.Join(t.Tags, ", "))
	}
	tw.Flush()
}

func printStats(w io.Writer, st view.Stats) {
	fmt.Fprintf(w, "%d total, %d active, %d completed\n", st.Total, st.Active, st.Completed)
}

func newDoneCmd(env *environment, sess func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Toggle a task between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s := sess()
			out := cmd.OutOrStdout()
			if !s.store.ToggleCompleted(id) {
				fmt.Fprintf(out, "No task with id %d.\n", id)
				return nil
			}
			t, _ := s.store.Get(id)
			state := "active"
			if t.Completed {
				state = "completed"
			}
			fmt.Fprintf(out, "Task %d is now %s.\n", id, state)
			return nil
		},
	}
}

func newRmCmd(env *environment, sess func() *session) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task and its subtasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !sess().store.Delete(id) {
				fmt.Fprintf(out, "No task with id %d.\n", id)
				return nil
			}
			fmt.Fprintf(out, "Deleted task %d.\n", id)
			return nil
		},
	}
}

func newStatsCmd(env *environment, sess func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printStats(cmd.OutOrStdout(), view.StatsOf(sess().store.Snapshot()))
			return nil
		},
	}
}
