// Copyright © 2018 One Concern

package cmd

import (
	"github.com/fatih/color"
	"github.com/oneconcern/datastore/pkg/datastore"
	"github.com/spf13/cobra"
)

var metadataListCmd = &cobra.Command{
	Use:   "list [METADATA]",
	Short: "List metadata set on data keys",
	Long: `Lists the metadata set directly on data keys, optionally restricted to some metadata name
and to the data keys starting with a prefix.`,
	Example: `% datastore metadata list affected-services --prefix settings.ntp
settings.ntp affected-services = ["chronyd"]`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var name string
		if len(args) > 0 {
			metadataKey, err := datastore.NewKey(datastore.Meta, args[0])
			if err != nil {
				wrapFatalln("invalid metadata key", err)
				return
			}
			name = metadataKey.Name()
		}

		h, err := openStore()
		if err != nil {
			wrapFatalln("open data store", err)
			return
		}
		defer h.close()

		found, err := datastore.GetMetadataPrefix(h, params.key.prefix, name)
		if err != nil {
			wrapFatalln("list metadata", err)
			return
		}

		dataKeys := make(datastore.KeySet, len(found))
		for k := range found {
			dataKeys.Add(k)
		}
		for _, dataKey := range dataKeys.Sorted() {
			entries := found[dataKey]
			metadataKeys := make(datastore.KeySet, len(entries))
			for k := range entries {
				metadataKeys.Add(k)
			}
			for _, metadataKey := range metadataKeys.Sorted() {
				logStdOut("%s %s = %s\n", color.CyanString(dataKey.Name()), metadataKey, entries[metadataKey])
			}
		}
	},
}

func init() {
	addPrefixFlag(metadataListCmd)
	metadataCmd.AddCommand(metadataListCmd)
}
