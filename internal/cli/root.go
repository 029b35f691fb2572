package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/histparl/rollcall/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rollcall",
	Short: "Rollcall - speaker attribution for digitized parliamentary debates",
	Long: `Rollcall resolves the speaker labels of digitized historical debate
records against a reference registry of members, offices, and titles.

OCR noise, shifting honorifics, and office-for-name attributions make the
raw labels unreliable; rollcall normalizes each label and runs a cascade of
exact, substring, and edit-distance matchers bounded by the validity
intervals of the reference data.

Every input row is classified as matched, ambiguous, ignored, or missed;
a row is never dropped and never errors.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("rollcall v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.rollcall/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.rollcall")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match ROLLCALL_*
	viper.SetEnvPrefix("ROLLCALL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	set := func(key string, assign func()) {
		if viper.IsSet(key) {
			assign()
		}
	}
	set("data.dir", func() { cfg.Data.Dir = viper.GetString("data.dir") })
	set("output.dir", func() { cfg.Output.Dir = viper.GetString("output.dir") })
	set("output.json_summary", func() { cfg.Output.JSONSummary = viper.GetString("output.json_summary") })
	set("concurrency.workers", func() { cfg.Concurrency.Workers = viper.GetInt("concurrency.workers") })
	set("concurrency.chunk_size", func() { cfg.Concurrency.ChunkSize = viper.GetInt("concurrency.chunk_size") })
	set("engine.ignore_length_limit", func() { cfg.Engine.IgnoreLengthLimit = viper.GetInt("engine.ignore_length_limit") })
	set("engine.max_fuzzy_candidates", func() { cfg.Engine.MaxFuzzyCandidates = viper.GetInt("engine.max_fuzzy_candidates") })
	set("engine.min_candidate_age", func() { cfg.Engine.MinCandidateAge = viper.GetInt("engine.min_candidate_age") })
	set("cache.snapshot_dir", func() { cfg.Cache.SnapshotDir = viper.GetString("cache.snapshot_dir") })
	set("llm.provider", func() { cfg.LLM.Provider = viper.GetString("llm.provider") })
	set("llm.model", func() { cfg.LLM.Model = viper.GetString("llm.model") })
	set("llm.base_url", func() { cfg.LLM.BaseURL = viper.GetString("llm.base_url") })
	set("llm.timeout", func() { cfg.LLM.Timeout = viper.GetInt("llm.timeout") })
	set("llm.max_tokens", func() { cfg.LLM.MaxTokens = viper.GetInt("llm.max_tokens") })
	set("logging.level", func() { cfg.Logging.Level = viper.GetString("logging.level") })
	set("logging.dir", func() { cfg.Logging.Dir = viper.GetString("logging.dir") })

	cfg.Output.Verbose = verbose
	if verbose && cfg.Logging.Level == "info" {
		cfg.Logging.Level = "debug"
	}
	return cfg
}
