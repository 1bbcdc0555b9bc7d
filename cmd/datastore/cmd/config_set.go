package cmd

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var configSet = &cobra.Command{
	Aliases: []string{"create"},
	Use:     "set",
	Short:   "Create a local config file",
	Long: `Creates a local config file to hold flags that do not change, like the data store path.

	By default, this configuration file will be placed in ` + configFileLocation(false) + `.

	Use the ` + envConfigLocation + ` environment variable to change this default target.
	`,
	Example: `# Use some data store
% datastore config set --path /var/lib/datastore/current
config file created in /home/user/.datastore/datastore.yaml

# Generate config in some non-default location
% ` + envConfigLocation + `=~/.config/datastore.yaml datastore config set --loglevel debug
config file created in /home/user/.config/datastore.yaml
`,
	Run: func(cmd *cobra.Command, args []string) {
		localConfig := CLIConfig{
			Path:     params.root.path,
			LogLevel: params.root.logLevel,
		}

		file := configFileLocation(true)
		if ext := filepath.Ext(file); ext != ".yaml" {
			infoLogger.Printf("warning: the generated config file will contain a yaml document, but the file extension is %q", ext)
		}

		o, err := localConfig.MarshalConfig()
		if err != nil {
			wrapFatalln("could not serialize config to yaml", err)
			return
		}

		err = os.MkdirAll(filepath.Dir(file), 0700)
		if err != nil {
			wrapFatalln("could not create directory to hold config "+filepath.Dir(file), err)
			return
		}

		err = ioutil.WriteFile(file, o, 0600)
		if err != nil {
			wrapFatalln("error writing config file "+file, err)
			return
		}

		infoLogger.Printf("config file created in %s", file)
	},
}

func init() {
	configCmd.AddCommand(configSet)
}
