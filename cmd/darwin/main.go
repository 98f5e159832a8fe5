package main

import (
	"os"

	"github.com/darwinhq/darwin/pkg/compiler"
	"github.com/darwinhq/darwin/pkg/config"
	"github.com/darwinhq/darwin/pkg/evaluator"
	"github.com/darwinhq/darwin/pkg/evolution"
	"github.com/darwinhq/darwin/pkg/logger"
	"github.com/darwinhq/darwin/pkg/skillstore"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("DARWIN")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.darwin")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "darwin",
	Short: "Darwin evolves prompt skills based on measured fitness",
	Long: `Darwin manages a population of skills compiled from versioned prompt
modules and evolves them automatically: underperforming skills absorb
module versions from top performers or try alternative registered
variants, with full version and changelog bookkeeping.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

// newOrchestrator wires the evolution orchestrator from viper config
func newOrchestrator() (*evolution.Orchestrator, *config.Config, error) {
	cfg, err := config.FromViper()
	if err != nil {
		return nil, nil, err
	}

	eval, err := evaluator.NewCommandEvaluator(cfg.ResolveEvaluateCommand())
	if err != nil {
		return nil, nil, err
	}

	store := skillstore.NewStore(cfg.SkillsDir)
	comp := compiler.New(store, cfg.RegistryPath, cfg.OutputDir)

	return evolution.NewOrchestrator(cfg, eval, comp), cfg, nil
}

// bindRootFlags declares the persistent flags and binds them to their
// viper keys so env vars and config files can override them
func bindRootFlags(flags *pflag.FlagSet) {
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "fmt", "Log format (fmt, json)")
	flags.String("base-dir", "", "Darwin state directory (default ~/.darwin)")

	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("base_dir", flags.Lookup("base-dir"))
}

func main() {
	bindRootFlags(rootCmd.PersistentFlags())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
