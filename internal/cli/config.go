package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the tool configuration
type Config struct {
	Feed        FeedConfig        `yaml:"feed"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// FeedConfig selects the default resolution feed
type FeedConfig struct {
	Path string `yaml:"path"` // used when --feed is not passed
}

// ConcurrencyConfig controls wallet valuation workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig controls report output
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		Feed:        FeedConfig{Path: ""},
		Concurrency: ConcurrencyConfig{Workers: runtime.NumCPU()},
		Output:      OutputConfig{Verbose: false},
	}
}

// CurrentConfig resolves the effective configuration from viper
func CurrentConfig() Config {
	cfg := DefaultConfig()
	if v := viper.GetString("feed.path"); v != "" {
		cfg.Feed.Path = v
	}
	if v := viper.GetInt("concurrency.workers"); v > 0 {
		cfg.Concurrency.Workers = v
	}
	cfg.Output.Verbose = viper.GetBool("output.verbose") || verbose
	return cfg
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Agora configuration",
	Long: `Manage Agora configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (AGORA_*)
3. Config file (~/.agora/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file, env vars and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := CurrentConfig()

		configFile := viper.ConfigFileUsed()
		if configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("  Current Configuration")
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		fmt.Println(string(yamlData))

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()
		fmt.Println("Configuration hierarchy (highest to lowest priority):")
		fmt.Println("  1. CLI flags")
		fmt.Println("  2. Environment variables (AGORA_*)")
		fmt.Println("  3. Config file (~/.agora/config.yaml)")
		fmt.Println("  4. Defaults")
		fmt.Println()

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.agora/config.yaml with all available options documented.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configDir := home + "/.agora"
		configPath := configDir + "/config.yaml"

		// Check if config already exists
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'agora config show' to view it, or delete it first to recreate", configPath)
		}

		// Create directory
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		// Create config file
		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("error creating config file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close config file: %w", closeErr)
			}
		}()

		// Helper for writing with error checking
		printf := func(format string, a ...interface{}) {
			if err != nil {
				return
			}
			_, err = fmt.Fprintf(f, format, a...)
		}

		printf("# Agora Configuration File\n")
		printf("#\n")
		printf("# Configuration hierarchy (highest to lowest priority):\n")
		printf("#   1. CLI flags\n")
		printf("#   2. Environment variables (AGORA_*)\n")
		printf("#   3. This config file\n")
		printf("#   4. Built-in defaults\n\n")

		if err != nil {
			return fmt.Errorf("error writing config: %w", err)
		}

		// Marshal the complete default config to YAML
		yamlData, err := yaml.Marshal(DefaultConfig())
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		if _, err := f.Write(yamlData); err != nil {
			return fmt.Errorf("error writing config: %w", err)
		}

		printf("\n# feed.path: resolution feed used when --feed is not passed\n")
		printf("# concurrency.workers: wallet valuation workers (default: CPU count)\n")

		if err != nil {
			return fmt.Errorf("error writing config: %w", err)
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  agora config show\n")
		fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
		fmt.Printf("  $EDITOR %s\n", configPath)
		fmt.Printf("\n")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
