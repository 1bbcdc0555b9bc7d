// Copyright © 2018 One Concern

package cmd

import (
	"github.com/oneconcern/datastore/pkg/defaults"
	"github.com/spf13/cobra"
)

var populateCmd = &cobra.Command{
	Use:   "populate FILE",
	Short: "Populate live settings from a defaults file",
	Long: `Loads default settings and metadata from a TOML file, then writes to the live data store
the settings which are not already set. Metadata is always written.

Prints the data keys which were populated.`,
	Example: `% cat defaults.toml
[settings.ntp]
time-servers = ["pool.ntp.org"]

[metadata.settings.ntp]
affected-services = ["chronyd"]

% datastore populate defaults.toml
settings.ntp.time-servers`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		d, err := defaults.LoadFile(storeFs, args[0])
		if err != nil {
			wrapFatalln("load defaults", err)
			return
		}

		h, err := openStore()
		if err != nil {
			wrapFatalln("open data store", err)
			return
		}
		defer h.close()

		written, err := defaults.Populate(h, d, defaults.WithLogger(h.l))
		if err != nil {
			wrapFatalln("populate defaults", err)
			return
		}
		for _, name := range written.Names() {
			logStdOut("%s\n", name)
		}
	},
}

func init() {
	rootCmd.AddCommand(populateCmd)
}
