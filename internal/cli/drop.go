package cli

import (
	"github.com/spf13/cobra"
)

// NewDropCommand creates the drop command.
func NewDropCommand(rootOpts *RootOptions, factory SchemaFactory) *cobra.Command {
	return &cobra.Command{
		Use:          "drop",
		Short:        "Drop the students table and all of its rows",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd, rootOpts, factory, Schema.DropTables, "Tables dropped")
		},
	}
}
