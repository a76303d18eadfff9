package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"covforge.dev/pkg/covforge/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [root]",
		Short: "List discovered types and their members",
		Long:  listLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := engineConfig()
			workflow := buildWorkflow(cmd, cfg)

			return workflow.List(cmd.Context(), domain.ListArgs{
				Root:    parseRoot(args),
				Exclude: viper.GetStringSlice(excludeConfigKey),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
