package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const defaultStorePath = "/var/lib/datastore/current"

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	// bug in viper? Need to keep names of fields the same as the serialized names..
	Path     string `json:"path" yaml:"path"`         // Base path of the data store
	LogLevel string `json:"loglevel" yaml:"loglevel"` // Logging level
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// setParams fills flags which were not set on the command line with the configured values
func (c *CLIConfig) setParams(flags *flagsT) {
	if flags.root.path == "" {
		flags.root.path = c.Path
	}
	if flags.root.logLevel == "" {
		flags.root.logLevel = c.LogLevel
	}
}

// MarshalConfig renders the configuration as a YAML document
func (c CLIConfig) MarshalConfig() ([]byte, error) {
	return yaml.Marshal(c)
}

// configFileLocation returns the location of the config file, as set by DATASTORE_CONFIG,
// or as used by viper, or in the user's home directory.
func configFileLocation(expandEnv bool) string {
	if location := os.Getenv(envConfigLocation); location != "" {
		return location
	}
	if used := viper.ConfigFileUsed(); used != "" && expandEnv {
		return used
	}
	home := "$HOME"
	if expandEnv {
		home = os.ExpandEnv(home)
	}
	return filepath.Join(home, ".datastore", "datastore.yaml")
}

// configCmd represents the config related commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage a config",
	Long: `Commands to manage the datastore CLI config.

Configuration for datastore is the common set of flags that are needed for most commands and do not change across runs.`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
