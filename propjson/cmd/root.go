// Package cmd provides the command-line interface of propjson.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment variables that provide defaults for flags that are not set on
// the command line. They may also come from a .env file in the working
// directory.
const (
	envLogLevel      = "PROPJSON_LOG_LEVEL"
	envLogFormat     = "PROPJSON_LOG_FORMAT"
	envPretty        = "PROPJSON_PRETTY"
	envDiagnosticsDB = "PROPJSON_DIAGNOSTICS_DB"
	envPort          = "PROPJSON_PORT"
)

var logger = zap.NewNop()

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use: "propjson",
		Short: "propjson converts JSON documents to and from registered " +
			"object graphs.",
		Long: `propjson converts JSON documents to and from registered ` +
			`object graphs. It lists the registered types, decodes ` +
			`documents while reporting what could not be mapped, and ` +
			`serves an HTTP inspector.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	root.PersistentFlags().String("log-level", "warn",
		"Log level (debug, info, warn, error), env "+envLogLevel)
	root.PersistentFlags().String("log-format", "console",
		"Log format, console or json, env "+envLogFormat)
	root.PersistentFlags().String("env-file", ".env",
		"File to load environment defaults from")

	root.AddCommand(
		newTypesCmd(),
		newDecodeCmd(),
		newEncodeArrayCmd(),
		newDiagnosticsCmd(),
		newServeCmd(),
	)

	return root
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func setup(cmd *cobra.Command, _ []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")

	err := godotenv.Load(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	level, err := zapcore.ParseLevel(stringSetting(cmd, "log-level", envLogLevel))
	if err != nil {
		return err
	}

	config, err := loggerConfig(level,
		stringSetting(cmd, "log-format", envLogFormat))
	if err != nil {
		return err
	}

	logger, err = config.Build()
	if err != nil {
		return err
	}

	atexit.Register(func() { _ = logger.Sync() })

	return nil
}

// loggerConfig uses the production config for json output and the
// development config for console output. Both write to stderr.
func loggerConfig(level zapcore.Level, format string) (zap.Config, error) {
	var config zap.Config

	switch format {
	case "json":
		config = zap.NewProductionConfig()
	case "console":
		config = zap.NewDevelopmentConfig()
	default:
		return zap.Config{}, fmt.Errorf("unknown log format %q", format)
	}

	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config, nil
}

// stringSetting returns the flag value when it was given on the command line
// and the environment value otherwise, falling back to the flag default.
func stringSetting(cmd *cobra.Command, flag, env string) string {
	value, _ := cmd.Flags().GetString(flag)
	if cmd.Flags().Changed(flag) {
		return value
	}

	if v, ok := os.LookupEnv(env); ok {
		return v
	}

	return value
}

func boolSetting(cmd *cobra.Command, flag, env string) bool {
	value, _ := cmd.Flags().GetBool(flag)
	if cmd.Flags().Changed(flag) {
		return value
	}

	if v, ok := os.LookupEnv(env); ok {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}

		logger.Warn("ignoring invalid boolean", zap.String("env", env),
			zap.String("value", v))
	}

	return value
}

func intSetting(cmd *cobra.Command, flag, env string) int {
	value, _ := cmd.Flags().GetInt(flag)
	if cmd.Flags().Changed(flag) {
		return value
	}

	if v, ok := os.LookupEnv(env); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}

		logger.Warn("ignoring invalid integer", zap.String("env", env),
			zap.String("value", v))
	}

	return value
}
