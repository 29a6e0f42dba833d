package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dwitlit/pkg/dwitlit"
)

const modulePath = "github.com/mesh-intelligence/dwitlit"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dwitlit version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "dwitlit v%s\nmodule: %s\n", dwitlit.Version, modulePath)
			return nil
		},
	}
}
