// Copyright © 2018 One Concern

package cmd

import (
	"github.com/spf13/cobra"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Commands to manage metadata",
	Long: `Metadata are named values attached to data keys, such as "affected-services".

Metadata set on a data key applies to all the keys below it, unless overridden.`,
}

func init() {
	rootCmd.AddCommand(metadataCmd)
}
