package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	m "covforge.dev/pkg/covforge/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "covforge"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName  = "output"
	excludeFlagName = "exclude"
	verboseFlagName = "verbose"

	runTargetFlagName   = "target"
	runPassesFlagName   = "passes"
	runParallelFlagName = "parallel"
	runTimeoutFlagName  = "timeout"

	excludeConfigKey     = "paths.exclude"
	runTargetConfigKey   = "run.target"
	runPassesConfigKey   = "run.passes"
	runParallelConfigKey = "run.parallel"
	runTimeoutConfigKey  = "run.scenario_timeout"
	runPlateauConfigKey  = "run.plateau_delta"
	runBatchConfigKey    = "run.batch_size"
	runMaxCtorConfigKey  = "run.max_ctor_params"
	runSkipRiskyKey      = "run.skip_risky"

	toolCompilerKey   = "toolchain.compiler"
	toolLcovKey       = "toolchain.lcov"
	toolStdKey        = "toolchain.std"
	toolExtraFlagsKey = "toolchain.extra_flags"

	generatorBackendKey = "generator.backend"
	generatorBaseURLKey = "generator.base_url"
	generatorModelKey   = "generator.model"

	defaultOutputDir = ".covforge-out"
	defaultCompiler  = "g++"
	defaultLcov      = "lcov"
	defaultCxxStd    = "c++14"
	defaultSkipRisky = true

	envPrefix = "COVFORGE"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".covforge.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultOutputDir)
	viper.SetDefault(excludeConfigKey, []string{})

	viper.SetDefault(runTargetConfigKey, m.DefaultTargetCoverage)
	viper.SetDefault(runPassesConfigKey, m.DefaultMaxPasses)
	viper.SetDefault(runParallelConfigKey, m.DefaultWorkers)
	viper.SetDefault(runTimeoutConfigKey, int64(m.DefaultScenarioTimeout.Seconds()))
	viper.SetDefault(runPlateauConfigKey, m.DefaultPlateauDelta)
	viper.SetDefault(runBatchConfigKey, m.DefaultBatchSize)
	viper.SetDefault(runMaxCtorConfigKey, m.DefaultMaxCtorParams)
	viper.SetDefault(runSkipRiskyKey, defaultSkipRisky)

	viper.SetDefault(toolCompilerKey, defaultCompiler)
	viper.SetDefault(toolLcovKey, defaultLcov)
	viper.SetDefault(toolStdKey, defaultCxxStd)
	viper.SetDefault(toolExtraFlagsKey, []string{})

	viper.SetDefault(generatorBackendKey, "")
	viper.SetDefault(generatorBaseURLKey, "")
	viper.SetDefault(generatorModelKey, "")

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

// engineConfig assembles the engine configuration from the resolved viper
// state (flags, config file and environment).
func engineConfig() m.EngineConfig {
	return m.EngineConfig{
		TargetCoverage:  viper.GetFloat64(runTargetConfigKey),
		MaxPasses:       viper.GetInt(runPassesConfigKey),
		PlateauDelta:    viper.GetFloat64(runPlateauConfigKey),
		BatchSize:       viper.GetInt(runBatchConfigKey),
		MaxCtorParams:   viper.GetInt(runMaxCtorConfigKey),
		Workers:         viper.GetInt(runParallelConfigKey),
		ScenarioTimeout: time.Duration(viper.GetInt64(runTimeoutConfigKey)) * time.Second,
		OutputDir:       m.Path(viper.GetString(outputFlagName)),
		SkipRiskyKinds:  viper.GetBool(runSkipRiskyKey),

		Compiler:   viper.GetString(toolCompilerKey),
		LcovBin:    viper.GetString(toolLcovKey),
		CxxStd:     viper.GetString(toolStdKey),
		ExtraFlags: viper.GetStringSlice(toolExtraFlagsKey),

		GeneratorBackend: viper.GetString(generatorBackendKey),
		GeneratorBaseURL: viper.GetString(generatorBaseURLKey),
		GeneratorModel:   viper.GetString(generatorModelKey),
	}.Normalize()
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
