package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dwitlit/internal/jsonl"
	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export all records as JSON Lines",
		Long: `Export writes one JSON object per record in ascending ID order. Without a
file the records go to stdout; with a file they are written atomically.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s types.Store) error {
				if len(args) == 0 {
					if _, err := jsonl.Export(s, cmd.OutOrStdout()); err != nil {
						return fmt.Errorf("export: %w", err)
					}
					return nil
				}

				n, err := jsonl.WriteFile(args[0], s)
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				result := map[string]any{"exported": n, "file": args[0]}
				return a.output(cmd.OutOrStdout(), result, func(w io.Writer) {
					fmt.Fprintf(w, "exported %d records to %s\n", n, args[0])
				})
			})
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import records from a JSON Lines export",
		Long: `Import creates one record per line in file order. Specific links are
remapped to the IDs assigned on import; records that already exist are reused.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s types.Store) error {
				ids, err := jsonl.ReadFile(args[0], s)
				if err != nil {
					return fmt.Errorf("import: %w", err)
				}
				result := map[string]any{"imported": len(ids), "ids": ids}
				return a.output(cmd.OutOrStdout(), result, func(w io.Writer) {
					fmt.Fprintf(w, "imported %d records from %s\n", len(ids), args[0])
				})
			})
		},
	}
}
