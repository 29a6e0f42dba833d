package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize dwitlit storage",
		Long:  "Create the configuration and data directories, write a default config.yaml\nif none exists, and initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.withStore(func(types.Store) error { return nil })
			if err != nil {
				return err
			}
			result := map[string]string{
				"config_dir": a.configDir,
				"data_dir":   a.dataDir,
				"backend":    a.v.GetString(cfgKeyBackend),
			}
			return a.output(cmd.OutOrStdout(), result, func(w io.Writer) {
				fmt.Fprintln(w, "dwitlit initialized")
				fmt.Fprintf(w, "config: %s\n", a.configDir)
				fmt.Fprintf(w, "data:   %s\n", a.dataDir)
			})
		},
	}
}
