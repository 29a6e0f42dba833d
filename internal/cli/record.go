package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		links     []string
		payload   string
		confirmed string
	)
	cmd := &cobra.Command{
		Use:   "create <label>",
		Short: "Create a record or find its identical twin",
		Long: `Create stores a record and prints its ID. If a record with the same label,
links and payload exists, its ID is printed instead.

Links are given in order as --link label for a general link or
--link label=id for a link to a specific record.

Example:
  dwitlit create person --payload alice
  dwitlit create knows --link person=0 --link person=1 --confirmed true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]types.Link, 0, len(links))
			for _, s := range links {
				l, err := parseLink(s)
				if err != nil {
					return err
				}
				parsed = append(parsed, l)
			}

			var flag *bool
			if confirmed != "" {
				v, err := strconv.ParseBool(confirmed)
				if err != nil {
					return usageError("invalid --confirmed value %q", confirmed)
				}
				flag = &v
			}

			return a.withStore(func(s types.Store) error {
				id, err := s.Create(args[0], parsed, []byte(payload), flag)
				if err != nil {
					return fmt.Errorf("create record: %w", err)
				}
				return a.output(cmd.OutOrStdout(), map[string]types.RecordID{"id": id}, func(w io.Writer) {
					fmt.Fprintln(w, id)
				})
			})
		},
	}
	cmd.Flags().StringArrayVar(&links, "link", nil, "link as label or label=id (repeatable, ordered)")
	cmd.Flags().StringVar(&payload, "payload", "", "payload text")
	cmd.Flags().StringVar(&confirmed, "confirmed", "", "confirmed flag: true or false (default keeps existing)")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(func(s types.Store) error {
				rec, err := s.Get(id)
				if err != nil {
					return fmt.Errorf("get record %d: %w", id, err)
				}
				return a.output(cmd.OutOrStdout(), recordJSON(rec), func(w io.Writer) {
					printRecord(w, rec)
				})
			})
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a record that no specific link targets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(func(s types.Store) error {
				if err := s.Remove(id); err != nil {
					return fmt.Errorf("remove record %d: %w", id, err)
				}
				return a.output(cmd.OutOrStdout(), map[string]types.RecordID{"removed": id}, func(w io.Writer) {
					fmt.Fprintf(w, "removed %d\n", id)
				})
			})
		},
	}
}

func newConfirmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <id> <true|false>",
		Short: "Set the confirmed flag of a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			value, err := strconv.ParseBool(args[1])
			if err != nil {
				return usageError("invalid confirmed value %q", args[1])
			}
			return a.withStore(func(s types.Store) error {
				if err := s.SetConfirmed(id, value); err != nil {
					return fmt.Errorf("confirm record %d: %w", id, err)
				}
				result := map[string]any{"id": id, "confirmed": value}
				return a.output(cmd.OutOrStdout(), result, func(w io.Writer) {
					fmt.Fprintf(w, "%d confirmed=%t\n", id, value)
				})
			})
		},
	}
}
