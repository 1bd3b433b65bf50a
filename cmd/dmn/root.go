package main

import (
	"errors"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"

	"github.com/tablekit/dmn"
	"github.com/tablekit/dmn/cel"
	"github.com/tablekit/dmn/expr"
	"github.com/tablekit/dmn/internal/logging"
)

var configFile string

const (
	LogLevelKey   = "log.level"
	LogFormatKey  = "log.format"
	LogNoColorKey = "log.no_color"

	CELCostLimitKey = "cel.cost_limit"
)

var rootCmd = &cobra.Command{
	Use:   "dmn",
	Short: "Evaluate DMN-style decision tables",
	Long: `dmn reads decision tables from YAML files, prints them, evaluates them
against variables and serves them over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, configErr := initConfig()
		logging.Init(logging.Config{
			Level:   viper.GetString(LogLevelKey),
			Format:  viper.GetString(LogFormatKey),
			NoColor: viper.GetBool(LogNoColorKey),
		}, os.Stderr)
		if configErr != nil { // reported once logging is set up
			return configErr
		}
		if configPath != "" {
			log.Debug().Msgf("using config file: %s", configPath)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execution failed")
	}
}

func init() {
	logging.InitDefault()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Configuration file (default is .dmn.yaml in the current or home directory)")

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(LogLevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	_ = viper.BindPFlag(LogFormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.PersistentFlags().Bool("no-color", false, "Disable color output")
	_ = viper.BindPFlag(LogNoColorKey, rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.PersistentFlags().Uint64("cel-cost-limit", 1_000_000, "Maximum cost of a CEL expression (0 disables the limit)")
	_ = viper.BindPFlag(CELCostLimitKey, rootCmd.PersistentFlags().Lookup("cel-cost-limit"))

	viper.SetEnvPrefix("DMN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

func initConfig() (string, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".dmn")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundError) {
			return "", err
		}
		return "", nil
	}
	return viper.ConfigFileUsed(), nil
}

// newEvaluator returns an Evaluator with every expression language the
// command supports.
func newEvaluator(opts ...dmn.Option) *dmn.Evaluator {
	opts = append([]dmn.Option{
		dmn.WithExpressionEvaluator(dmn.CEL, cel.NewEvaluator(cel.CostLimit(viper.GetUint64(CELCostLimitKey)))),
		dmn.WithExpressionEvaluator(dmn.Expr, expr.NewEvaluator()),
		dmn.WithLogger(log.Logger),
		dmn.WithTracer(otel.Tracer("github.com/tablekit/dmn")),
	}, opts...)
	return dmn.NewEvaluator(opts...)
}
