package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/searchdash/internal/app"
	"github.com/hyperifyio/searchdash/internal/variant"
)

func newModulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   CmdModules,
		Short: "List the registered variant modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range variant.Names() {
				suffix := ""
				if name == variant.DefaultModule {
					suffix = " (default)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", name, suffix)
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   CmdVersion,
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.VersionString())
		},
	}
}
