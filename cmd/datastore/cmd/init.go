// Copyright © 2018 One Concern

package cmd

import (
	"os"
	"path/filepath"

	"github.com/oneconcern/datastore/pkg/datastore/version"
	"github.com/oneconcern/datastore/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const storeDirMode os.FileMode = 0755

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a data store",
	Long: `Creates the layout of an empty data store at the configured path, and records its version.

With --new-directory, a fresh directory named after the data store version is created below the path,
and its location is printed. This is useful to migrate settings to a new data store version side by side.`,
	Example: `% datastore init --path /var/lib/datastore --new-directory
/var/lib/datastore/v1.0_1XqKlPzHv9PUpvJjKBcQ5ihQrgP`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		base := params.root.path
		if params.init.newDirectory {
			base = filepath.Join(base, version.NewDirectoryName(version.Current))
		}
		versionPath := filepath.Join(base, versionFile)

		existing, err := version.FromFile(storeFs, versionPath)
		switch {
		case err == nil:
			infoLogger.Printf("data store already initialized at %s (%s)", base, existing)
			return
		case !errors.Is(err, os.ErrNotExist):
			wrapFatalln("read data store version", err)
			return
		}

		if err = initStore(storeFs, base); err != nil {
			wrapFatalln("initialize data store", err)
			return
		}
		infoLogger.Printf("initialized data store %s at %s", version.Current, base)
		if params.init.newDirectory {
			logStdOut("%s\n", base)
		}
	},
}

func initStore(fs afero.Fs, base string) error {
	if err := fs.MkdirAll(filepath.Join(base, "live"), storeDirMode); err != nil {
		return err
	}
	return version.WriteFile(fs, filepath.Join(base, versionFile), version.Current)
}

func init() {
	addNewDirectoryFlag(initCmd)
	rootCmd.AddCommand(initCmd)
}
