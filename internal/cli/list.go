package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List record IDs",
		Long:  "List prints all record IDs in ascending order, or only those with --label.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s types.Store) error {
				var (
					it  *types.Iterator[types.RecordID]
					err error
				)
				if cmd.Flags().Changed("label") {
					it, err = s.ListRecordsByLabel(label)
				} else {
					it, err = s.ListRecords()
				}
				if err != nil {
					return fmt.Errorf("list records: %w", err)
				}
				ids, err := it.Collect()
				if err != nil {
					return fmt.Errorf("list records: %w", err)
				}
				return a.output(cmd.OutOrStdout(), ids, func(w io.Writer) {
					for _, id := range ids {
						fmt.Fprintln(w, id)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "only records with this label")
	return cmd
}

func newLinksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "links <id>",
		Short: "List the links of a record in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(func(s types.Store) error {
				it, err := s.ListLinks(id)
				if err != nil {
					return fmt.Errorf("list links of %d: %w", id, err)
				}
				links, err := it.Collect()
				if err != nil {
					return fmt.Errorf("list links of %d: %w", id, err)
				}
				return a.output(cmd.OutOrStdout(), links, func(w io.Writer) {
					for pos, l := range links {
						fmt.Fprintf(w, "%d %s\n", pos, formatLink(l))
					}
				})
			})
		},
	}
}

func newBacklinksCmd(a *app) *cobra.Command {
	var (
		label  string
		target string
	)
	cmd := &cobra.Command{
		Use:   "backlinks (--label <label> | --id <id>)",
		Short: "List links that refer to a label or a record",
		Long: `Backlinks prints one "source position" pair per line.

With --label it lists general links carrying that label. With --id it lists
specific links that target the record.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s types.Store) error {
				var (
					it  *types.Iterator[types.Backlink]
					err error
				)
				if cmd.Flags().Changed("id") {
					id, perr := parseID(target)
					if perr != nil {
						return perr
					}
					it, err = s.ListSpecificBacklinks(id)
				} else {
					it, err = s.ListGeneralBacklinks(label)
				}
				if err != nil {
					return fmt.Errorf("list backlinks: %w", err)
				}
				backs, err := it.Collect()
				if err != nil {
					return fmt.Errorf("list backlinks: %w", err)
				}
				return a.output(cmd.OutOrStdout(), backs, func(w io.Writer) {
					for _, b := range backs {
						fmt.Fprintf(w, "%d %d\n", b.Source, b.Position)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "general link label")
	cmd.Flags().StringVar(&target, "id", "", "target record id")
	cmd.MarkFlagsMutuallyExclusive("label", "id")
	cmd.MarkFlagsOneRequired("label", "id")
	return cmd
}
