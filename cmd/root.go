// Package cmd is the keketso command line.
//
// Configuration is read from, highest priority first:
//  1. command-line flags
//  2. KEKETSO_<SECTION>_<KEY> environment variables (plus SUPABASE_URL,
//     SUPABASE_KEY and their NEXT_PUBLIC_ forms for the store)
//  3. the config file: --config, KEKETSO_CONFIG_FILE or .keketso.yml
package cmd

import (
	"fmt"
	"os"

	"github.com/keketsolithane/keketso/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "keketso",
	Short: "Company website with contact and quote forms",
	Long: `keketso serves the company website. The contact and quote forms each
write one row to the hosted store (Supabase by default).

Quick Start:
  export SUPABASE_URL=https://<project>.supabase.co
  export SUPABASE_KEY=<anon key>
  keketso check        Validate configuration and reach the store
  keketso serve        Start the web server`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .keketso.yml, can also use KEKETSO_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("store", config.DriverSupabase, "store driver (supabase, oxidb, sqlite)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("store.driver", rootCmd.PersistentFlags().Lookup("store"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".keketso")
	}

	config.SetDefaults(viper.GetViper())

	// A missing file falls back to defaults and the environment.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
