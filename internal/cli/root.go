package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/quotescan/internal/logging"
	"github.com/ppiankov/quotescan/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	noCache bool
	timeout time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "quotescan",
	Short: "quotescan - extract attributed quotes from Chinese news text",
	Long: `quotescan finds statements attributed to named people, organizations and
places in news text. Each news item is annotated (words, POS tags, named
entities, dependency arcs) and every "<speaker> <reporting verb> <statement>"
structure is reported together with the statement it introduces, extended
across following sentences while they keep talking about the same thing.

Annotation comes from an LTP-style HTTP sidecar or a pre-annotated file.`,
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
		fmt.Printf("quotescan %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.quotescan/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&noCache, "no-cache", false, "disable annotation and similarity caching")
	flags.DurationVar(&timeout, "timeout", 0, "overall timeout (0 = none)")

	flags.String("verbs", "", "reporting verbs file, whitespace separated")
	flags.String("annotator", "", "annotation sidecar base URL")
	flags.String("conll", "", "pre-annotated input file (skips the sidecar)")
	flags.String("similarity", "", "sentence comparator: cosine, llm, always, never")
	flags.Float64("threshold", 0, "cosine similarity threshold in [0, 1]")
	flags.String("out", "", "result file path")
	flags.String("json", "", "also write all reports as JSON to this path")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-file", "", "write logs to a rotated file instead of stderr")

	bindFlags(viper.GetViper(), rootCmd, map[string]string{
		"verbs":      "extract.verbs_file",
		"annotator":  "annotator.endpoint",
		"conll":      "annotator.conll_file",
		"similarity": "similarity.method",
		"threshold":  "similarity.threshold",
		"out":        "output.result_path",
		"json":       "output.json_path",
		"verbose":    "output.verbose",
		"log-level":  "logging.level",
		"log-file":   "logging.file",
	})

	rootCmd.AddCommand(versionCmd)
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		f := cmd.PersistentFlags().Lookup(flag)
		if f == nil {
			f = cmd.Flags().Lookup(flag)
		}
		if f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// initConfig reads in config file and ENV variables
func initConfig() {
	v := viper.GetViper()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		v.AddConfigPath(filepath.Join(home, ".quotescan"))
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	if err := setDefaults(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	if err := v.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}
}

// setDefaults registers every DefaultConfig value with v and enables
// QUOTESCAN_* environment overrides (QUOTESCAN_EXTRACT_VERBS_FILE, ...)
func setDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	for key, value := range flatten("", tree) {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("QUOTESCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without a default are invisible to AutomaticEnv
	_ = v.BindEnv("llm.api_key", "QUOTESCAN_LLM_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.base_url", "QUOTESCAN_LLM_BASE_URL", "OLLAMA_BASE_URL")
	_ = v.BindEnv("output.json_path", "QUOTESCAN_OUTPUT_JSON_PATH")
	_ = v.BindEnv("logging.file", "QUOTESCAN_LOGGING_FILE")
	_ = v.BindEnv("annotator.http_proxy", "QUOTESCAN_ANNOTATOR_HTTP_PROXY", "HTTP_PROXY")
	_ = v.BindEnv("annotator.https_proxy", "QUOTESCAN_ANNOTATOR_HTTPS_PROXY", "HTTPS_PROXY")
	return nil
}

func flatten(prefix string, tree map[string]any) map[string]any {
	out := make(map[string]any)
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			for sk, sv := range flatten(key, sub) {
				out[sk] = sv
			}
			continue
		}
		out[key] = val
	}
	return out
}

// decodeConfig builds the effective configuration from v
func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// loadConfig returns the effective configuration with command-line
// switches applied
func loadConfig() (*model.Config, error) {
	cfg, err := decodeConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if verbose && cfg.Logging.Level == "info" {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *model.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}
