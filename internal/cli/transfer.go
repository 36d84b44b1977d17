package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tgienger/todo/internal/persist"
)

// codecForPath picks a codec from the flag, falling back to the file
// extension and then JSON
func codecForPath(format, path string) (persist.Codec, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if format != "yaml" && format != "yml" {
			format = "json"
		}
	}
	return persist.CodecFor(format)
}

func newExportCmd(env *environment, sess func() *session) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write all tasks to a JSON or YAML file (stdout when FILE is omitted or -)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			codec, err := codecForPath(format, path)
			if err != nil {
				return err
			}
			c := sess().store.Snapshot()
			b, err := codec.Encode(c)
			if err != nil {
				return fmt.Errorf("encode tasks: %w", err)
			}
			if path == "-" {
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			if err := afero.WriteFile(env.fs, path, b, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(env.stderr, "Exported %d tasks to %s.\n", len(c), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from file extension)")
	return cmd
}

func newImportCmd(env *environment, sess func() *session) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all tasks with the contents of a JSON or YAML file (- reads stdin)",
		Long: `Replace all tasks with the contents of an exported file.

Both the export format and a bare JSON array of tasks, as stored by the
browser version of the app, are accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			codec, err := codecForPath(format, path)
			if err != nil {
				return err
			}
			var b []byte
			if path == "-" {
				b, err = io.ReadAll(cmd.InOrStdin())
			} else {
				b, err = afero.ReadFile(env.fs, path)
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			c, err := codec.Decode(b)
			if err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			sess().store.Replace(c)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks.\n", len(c))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from file extension)")
	return cmd
}
