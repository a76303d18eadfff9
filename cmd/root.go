// Package cmd provides the root command and CLI setup for covforge.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	m "covforge.dev/pkg/covforge/internal/model"

	"covforge.dev/pkg/covforge/internal/adapter"
	"covforge.dev/pkg/covforge/internal/controller"
	"covforge.dev/pkg/covforge/internal/domain"
)

var fsAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var traceStore adapter.TraceStore

// outputDirFlag is a root-level flag shared by commands that write reports.
var outputDirFlag string

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

// verboseFlag raises the log level to debug.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewReportStore()
	traceStore = adapter.NewLcovTraceStore()
}

// buildWorkflow assembles the workflow from the resolved configuration.
// Construction happens per command run because the synthesizer and the UI
// depend on flag values.
func buildWorkflow(cmd *cobra.Command, cfg m.EngineConfig) domain.Workflow {
	ui := controller.NewUI(cmd, controller.IsTTY(os.Stdout), cfg.TargetCoverage)

	toolchain := adapter.NewLocalToolchainAdapter(cfg)
	orchestrator := domain.NewOrchestrator(fsAdapter, toolchain, traceStore, cfg)

	synthesizer := domain.NewSynthesizer(cfg)

	if cfg.GeneratorBackend != "" {
		client, err := adapter.NewOpenAIGenClient(cfg)
		if err != nil {
			slog.Warn("generative backend unavailable, using deterministic synthesis only", "error", err)
		} else {
			synthesizer = domain.NewGenerativeSynthesizer(synthesizer, client)
		}
	}

	analyzer := domain.NewAnalyzer(fsAdapter)

	return domain.NewWorkflow(reportStore, ui, analyzer, synthesizer, orchestrator, cfg)
}

const rootLongDescription = `Covforge synthesizes C++ unit tests from the structure of your sources and
iterates on them until line coverage reaches a target: it analyzes class
declarations, generates Google Test scenarios, compiles them under gcov
instrumentation and feeds lcov results back into another synthesis pass.`

const runLongDescription = `Run coverage-guided test synthesis for the given project root
(default: current directory). Scenarios, binaries and reports are written
to the output directory.`

const listLongDescription = `Analyze the project and list the discovered types with their method and
constructor counts, without compiling anything.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "covforge",
		Short: "Coverage-guided C++ test synthesis tool",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for scenarios and coverage reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "enable debug logging")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parseRoot(args []string) m.Path {
	if len(args) == 0 {
		return "."
	}

	return m.Path(args[0])
}
