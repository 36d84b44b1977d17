package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tgienger/todo/internal/input"
)

func newSubCmd(env *environment, sess func() *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sub",
		Aliases: []string{"subtask"},
		Short:   "Manage subtasks",
	}
	cmd.AddCommand(
		newSubAddCmd(sess),
		newSubDoneCmd(sess),
		newSubRmCmd(sess),
	)
	return cmd
}

func newSubAddCmd(sess func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "add TASK_ID TEXT...",
		Short: "Add a subtask",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			text, err := input.SubtaskText(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			id, ok := sess().store.AddSubtask(taskID, text)
			if !ok {
				fmt.Fprintf(out, "No task with id %d.\n", taskID)
				return nil
			}
			fmt.Fprintf(out, "Added subtask %d to task %d.\n", id, taskID)
			return nil
		},
	}
}

func parseIDs(args []string) (taskID, subID int64, err error) {
	if taskID, err = parseID(args[0]); err != nil {
		return 0, 0, err
	}
	if subID, err = parseID(args[1]); err != nil {
		return 0, 0, err
	}
	return taskID, subID, nil
}

func newSubDoneCmd(sess func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "done TASK_ID SUBTASK_ID",
		Short: "Toggle a subtask between active and completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, subID, err := parseIDs(args)
			if err != nil {
				return err
			}
			s := sess()
			out := cmd.OutOrStdout()
			if !s.store.ToggleSubtaskCompleted(taskID, subID) {
				fmt.Fprintf(out, "No subtask %d in task %d.\n", subID, taskID)
				return nil
			}
			t, _ := s.store.Get(taskID)
			st, _ := t.Subtask(subID)
			state := "active"
			if st.Completed {
				state = "completed"
			}
			fmt.Fprintf(out, "Subtask %d is now %s.\n", subID, state)
			return nil
		},
	}
}

func newSubRmCmd(sess func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "rm TASK_ID SUBTASK_ID",
		Short: "Delete a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, subID, err := parseIDs(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !sess().store.DeleteSubtask(taskID, subID) {
				fmt.Fprintf(out, "No subtask %d in task %d.\n", subID, taskID)
				return nil
			}
			fmt.Fprintf(out, "Deleted subtask %d.\n", subID)
			return nil
		},
	}
}
