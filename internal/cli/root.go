// Package cli is the todo command line: the terminal UI plus subcommands
// for scripting.
package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tgienger/todo/internal/ui"
)

type rootOptions struct {
	cfgFile string
	verbose bool
}

// sessionKey is set on commands that need the task store
const sessionKey = "session"

// Execute runs the root command. This is called by main.main().
func Execute(version string) {
	if err := run(defaultEnvironment(), version, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// run executes one command line and always flushes the session, even when
// the command fails
func run(env *environment, version string, args []string) error {
	root, closeSession := newRootCommand(env, version)
	root.SetArgs(args)
	err := errors.Join(root.Execute(), closeSession())
	if err != nil {
		fmt.Fprintln(env.stderr, "Error:", err)
	}
	return err
}

func newRootCommand(env *environment, version string) (*cobra.Command, func() error) {
	opts := &rootOptions{}
	var sess *session
	closeSession := func() error {
		if sess == nil {
			return nil
		}
		err := sess.Close()
		sess = nil
		return err
	}

	root := &cobra.Command{
		Use:   "todo",
		Short: "Track tasks with categories, priorities, due dates, tags and subtasks",
		Long: `todo keeps a list of tasks on your machine.

Run without arguments to open the terminal UI, or use the subcommands
to add, list and update tasks from scripts.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{sessionKey: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[sessionKey] == "" {
				return nil
			}
			s, err := openSession(cmd.Context(), env, opts)
			if err != nil {
				return err
			}
			sess = s
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(sess)
		},
	}

	root.SetOut(env.stdout)
	root.SetErr(env.stderr)
	root.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/todo/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	current := func() *session { return sess }
	root.AddCommand(
		withSession(newAddCmd(env, current)),
		withSession(newListCmd(env, current)),
		withSession(newDoneCmd(env, current)),
		withSession(newRmCmd(env, current)),
		withSession(newStatsCmd(env, current)),
		withSession(newSubCmd(env, current)),
		withSession(newExportCmd(env, current)),
		withSession(newImportCmd(env, current)),
	)
	return root, closeSession
}

// withSession marks cmd and its children as needing an open session
func withSession(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[sessionKey] = "true"
	for _, c := range cmd.Commands() {
		withSession(c)
	}
	return cmd
}

func runTUI(s *session) error {
	app := ui.NewApp(ui.Options{
		Store:    s.store,
		Settings: s.settings,
		Language: s.cfg.Language(),
		Theme:    s.cfg.UI.Theme,
		Logger:   s.log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
