package cli

import (
	"github.com/spf13/cobra"
)

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions, factory SchemaFactory) *cobra.Command {
	return &cobra.Command{
		Use:          "create",
		Short:        "Create the students table if it does not exist",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd, rootOpts, factory, Schema.CreateTables, "Tables created")
		},
	}
}
