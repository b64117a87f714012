package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "agora",
	Short: "Agora - Contingent claim algebra over proof targets",
	Long: `Agora works with contingent claims: composable payoffs that depend on
whether, when, and by whom open targets get resolved.

Claims are exact rational expressions. Agora decodes their canonical text
form, simplifies them against a resolution feed, brackets the value of
open claims, and prices wallets of claim holdings.

It never talks to a market. Feeds and wallets are plain files.`,
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
	Long:  `Display the version number and build information for Agora.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("agora v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.agora/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.agora")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Defaults backing the flag > env > file > default hierarchy
	defaults := DefaultConfig()
	viper.SetDefault("feed.path", defaults.Feed.Path)
	viper.SetDefault("concurrency.workers", defaults.Concurrency.Workers)
	viper.SetDefault("output.verbose", defaults.Output.Verbose)

	// Read in environment variables that match AGORA_*
	viper.SetEnvPrefix("AGORA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
