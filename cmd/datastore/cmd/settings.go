// Copyright © 2018 One Concern

package cmd

import (
	"github.com/oneconcern/datastore/pkg/controller"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var settingsCmd = &cobra.Command{
	Use:   "settings [PREFIX]",
	Short: "Print modeled settings",
	Long: `Reads the settings below some prefix, checks them against the settings model and prints them as YAML.

The prefix is relative to "settings", e.g. "ntp" or "host-containers.admin".`,
	Example: `% datastore settings ntp
ntp:
  time-servers:
  - pool.ntp.org`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		committed, err := committedParam()
		if err != nil {
			wrapFatalln("invalid committed state", err)
			return
		}
		var prefix string
		if len(args) > 0 {
			prefix = args[0]
		}

		h, err := openStore()
		if err != nil {
			wrapFatalln("open data store", err)
			return
		}
		defer h.close()

		settings, err := controller.GetSettingsPrefix(h, prefix, committed, controller.WithLogger(h.l))
		if err != nil {
			wrapFatalln("get settings", err)
			return
		}
		out, err := yaml.Marshal(settings)
		if err != nil {
			wrapFatalln("format settings", err)
			return
		}
		logStdOut("%s", out)
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit pending settings",
	Long: `Promotes all pending settings to live, then discards the pending changes.

Prints the keys that were committed.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		h, err := openStore()
		if err != nil {
			wrapFatalln("open data store", err)
			return
		}
		defer h.close()

		committed, err := controller.Commit(h, controller.WithLogger(h.l))
		if err != nil {
			wrapFatalln("commit", err)
			return
		}
		if committed.Len() == 0 {
			infoLogger.Println("nothing to commit")
			return
		}
		for _, name := range committed.Names() {
			logStdOut("%s\n", name)
		}
	},
}

func init() {
	addCommittedFlag(settingsCmd)
	rootCmd.AddCommand(settingsCmd)

	rootCmd.AddCommand(commitCmd)
}
