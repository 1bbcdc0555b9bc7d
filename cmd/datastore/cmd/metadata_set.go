// Copyright © 2018 One Concern

package cmd

import (
	"github.com/oneconcern/datastore/pkg/datastore"
	"github.com/spf13/cobra"
)

var metadataSetCmd = &cobra.Command{
	Use:     "set METADATA KEY VALUE",
	Short:   "Set the metadata of a data key",
	Long:    `Sets some metadata on a data key. Values are JSON scalars: strings must be quoted.`,
	Example: `% datastore metadata set affected-services settings.ntp '["chronyd"]'`,
	Args:    cobra.ExactArgs(3),
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
		if err = checkScalar(args[2]); err != nil {
			wrapFatalln("invalid metadata value (strings must be quoted)", err)
			return
		}

		h, err := openStore()
		if err != nil {
			wrapFatalln("open data store", err)
			return
		}
		defer h.close()

		if err = h.SetMetadata(metadataKey, dataKey, args[2]); err != nil {
			wrapFatalln("set metadata", err)
			return
		}
	},
}

func init() {
	metadataCmd.AddCommand(metadataSetCmd)
}
