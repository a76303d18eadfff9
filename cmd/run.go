package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"covforge.dev/pkg/covforge/internal/domain"
)

var runTargetFlag float64
var runPassesFlag int
var runParallelFlag int
var runTimeoutFlag int64
var runGeneratorFlag string

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [root]",
		Short: "Run coverage-guided test synthesis",
		Long:  runLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := engineConfig()
			workflow := buildWorkflow(cmd, cfg)

			return workflow.Run(cmd.Context(), domain.RunArgs{
				Root:    parseRoot(args),
				Exclude: viper.GetStringSlice(excludeConfigKey),
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&runTargetFlag, runTargetFlagName, "t", viper.GetFloat64(runTargetConfigKey), "target aggregate line coverage percentage")
	bindFlagToConfig(cmd.Flags().Lookup(runTargetFlagName), runTargetConfigKey)

	cmd.Flags().IntVarP(&runPassesFlag, runPassesFlagName, "n", viper.GetInt(runPassesConfigKey), "maximum number of synthesis passes")
	bindFlagToConfig(cmd.Flags().Lookup(runPassesFlagName), runPassesConfigKey)

	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of parallel scenario builds")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.Flags().Int64Var(&runTimeoutFlag, runTimeoutFlagName, viper.GetInt64(runTimeoutConfigKey), "per-scenario execution timeout in seconds")
	bindFlagToConfig(cmd.Flags().Lookup(runTimeoutFlagName), runTimeoutConfigKey)

	cmd.Flags().StringVar(&runGeneratorFlag, "generator", viper.GetString(generatorBackendKey), "generative backend for extra scenarios (empty disables it)")
	bindFlagToConfig(cmd.Flags().Lookup("generator"), generatorBackendKey)
}
