// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envConfigLocation = "DATASTORE_CONFIG"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "datastore",
	Short: "Datastore manages hierarchical settings",
	Long: `Datastore manages hierarchical settings, stored as files.

Settings are addressed by dotted keys, such as "settings.ntp.time-servers", and hold JSON scalar values.
Changes are staged as pending, then committed to live.

Metadata may be attached to any data key, and is inherited by the keys below it.
`,
	SilenceUsage: true,
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	addPathFlag(rootCmd)
	addLogLevelFlag(rootCmd)
	addMetricsFlag(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("path", defaultStorePath)
	viper.SetDefault("loglevel", "info")
	if os.Getenv(envConfigLocation) != "" {
		viper.SetConfigFile(os.Getenv(envConfigLocation))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.datastore")
		viper.AddConfigPath("/etc/datastore")
		viper.SetConfigName("datastore")
	}

	viper.SetEnvPrefix("datastore")
	viper.AutomaticEnv() // read in environment variables that match
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		infoLogger.Println("Using config file:", viper.ConfigFileUsed())
	}

	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
		return
	}
	config.setParams(&params)
}
