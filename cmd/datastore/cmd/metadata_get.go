// Copyright © 2018 One Concern

package cmd

import (
	"github.com/oneconcern/datastore/pkg/datastore"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

var metadataGetCmd = &cobra.Command{
	Use:   "get METADATA KEY",
	Short: "Get the metadata of a data key",
	Long: `Prints the value of some metadata for a data key.

Unless --raw is set, the value may be inherited from the nearest parent key carrying it.
Exits with ENOENT status when no value is found.`,
	Example: `% datastore metadata get affected-services settings.ntp.time-servers
["chronyd"]`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		metadataKey, err := datastore.NewKey(datastore.Meta, args[0])
		if err != nil {
			wrapFatalln("invalid metadata key", err)
			return
		}
		dataKey, err := datastore.NewKey(datastore.Data, args[1])
		if err != nil {
			wrapFatalln("invalid data key", err)
			return
		}

		h, err := openStore()
		if err != nil {
			wrapFatalln("open data store", err)
			return
		}
		defer h.close()

		get := h.GetMetadata
		if params.metadata.raw {
			get = h.GetMetadataRaw
		}
		value, ok, err := get(metadataKey, dataKey)
		if err != nil {
			wrapFatalln("get metadata", err)
			return
		}
		if !ok {
			wrapFatalWithCodef(int(unix.ENOENT), "metadata %s not found for %s", metadataKey, dataKey)
			return
		}
		logStdOut("%s\n", value)
	},
}

func init() {
	addRawFlag(metadataGetCmd)
	metadataCmd.AddCommand(metadataGetCmd)
}
