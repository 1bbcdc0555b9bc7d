// Copyright © 2018 One Concern

package cmd

import (
	"strings"

	"github.com/fatih/color"
	"github.com/oneconcern/datastore/pkg/datastore"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

var getCmd = &cobra.Command{
	Use:   "get KEY...",
	Short: "Get the values of data keys",
	Long: `Prints the values of some data keys.

Exits with ENOENT status when some key is not populated.`,
	Example: `% datastore get settings.hostname settings.ntp.time-servers
settings.hostname = "node1"
settings.ntp.time-servers = ["pool.ntp.org"]`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		committed, err := committedParam()
		if err != nil {
			wrapFatalln("invalid committed state", err)
			return
		}
		keys, err := datastore.NewKeys(datastore.Data, args...)
		if err != nil {
			wrapFatalln("invalid keys", err)
			return
		}

		h, err := openStore()
		if err != nil {
			wrapFatalln("open data store", err)
			return
		}
		defer h.close()

		var missing []string
		for _, key := range keys {
			value, ok, err := h.GetKey(key, committed)
			if err != nil {
				wrapFatalln("get key "+key.Name(), err)
				return
			}
			if !ok {
				missing = append(missing, key.Name())
				continue
			}
			logStdOut("%s = %s\n", key.Name(), value)
		}

		if len(missing) > 0 {
			wrapFatalWithCodef(int(unix.ENOENT), "key not found: %s", strings.Join(missing, ", "))
		}
	},
}

var setCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set the value of a data key",
	Long: `Sets the value of a data key. Values are JSON scalars: strings must be quoted.

Values are staged as pending until committed, unless --committed live is given.`,
	Example: `% datastore set settings.hostname '"node1"'
% datastore set settings.updates.seed 42`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		committed, err := datastore.ParseCommitted(params.set.committed)
		if err != nil {
			wrapFatalln("invalid committed state", err)
			return
		}
		key, err := datastore.NewKey(datastore.Data, args[0])
		if err != nil {
			wrapFatalln("invalid key", err)
			return
		}
		if err = checkScalar(args[1]); err != nil {
			wrapFatalln("invalid value for "+key.Name()+" (strings must be quoted)", err)
			return
		}

		h, err := openStore()
		if err != nil {
			wrapFatalln("open data store", err)
			return
		}
		defer h.close()

		if err = h.SetKey(key, args[1], committed); err != nil {
			wrapFatalln("set key "+key.Name(), err)
			return
		}
	},
}

var listCmd = &cobra.Command{
	Use:   "list [PREFIX]",
	Short: "List populated data keys",
	Long:  `Lists the populated data keys, optionally restricted to the keys starting with some prefix.`,
	Example: `% datastore list settings.ntp --values
settings.ntp.time-servers = ["pool.ntp.org"]`,
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

		keys, err := h.ListPopulatedKeys(prefix, committed)
		if err != nil {
			wrapFatalln("list keys", err)
			return
		}

		for _, key := range keys.Sorted() {
			if !params.key.values {
				logStdOut("%s\n", key.Name())
				continue
			}
			value, ok, err := h.GetKey(key, committed)
			if err != nil {
				wrapFatalln("get key "+key.Name(), err)
				return
			}
			if ok {
				logStdOut("%s = %s\n", color.CyanString(key.Name()), value)
			}
		}
	},
}

// checkScalar verifies that a value holds some JSON scalar
func checkScalar(value string) error {
	var v interface{}
	return datastore.DeserializeScalar(value, &v)
}

func init() {
	addCommittedFlag(getCmd)
	rootCmd.AddCommand(getCmd)

	addSetCommittedFlag(setCmd)
	rootCmd.AddCommand(setCmd)

	addCommittedFlag(listCmd)
	addValuesFlag(listCmd)
	rootCmd.AddCommand(listCmd)
}
