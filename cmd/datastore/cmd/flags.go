// Copyright © 2018 One Concern

package cmd

import (
	"github.com/oneconcern/datastore/pkg/datastore"
	"github.com/spf13/cobra"
)

type flagsT struct {
	root struct {
		path     string
		logLevel string
		metrics  bool
	}
	key struct {
		committed string
		values    bool
		prefix    string
	}
	set struct {
		committed string
	}
	metadata struct {
		raw bool
	}
	init struct {
		newDirectory bool
	}
}

var params flagsT

func addPathFlag(cmd *cobra.Command) string {
	path := "path"
	cmd.PersistentFlags().StringVar(&params.root.path, path, "", "The base path of the data store (default "+defaultStorePath+")")
	return path
}

func addLogLevelFlag(cmd *cobra.Command) string {
	loglevel := "loglevel"
	cmd.PersistentFlags().StringVar(&params.root.logLevel, loglevel, "", "The logging level. Levels by increasing order of verbosity: none, error, warn, info, debug (default info)")
	return loglevel
}

func addMetricsFlag(cmd *cobra.Command) string {
	metrics := "metrics"
	cmd.PersistentFlags().BoolVar(&params.root.metrics, metrics, false, "Log data store operation metrics when the command completes")
	return metrics
}

func addCommittedFlag(cmd *cobra.Command) string {
	committed := "committed"
	cmd.Flags().StringVar(&params.key.committed, committed, datastore.Live.String(), "The state of the data store to read: live or pending")
	return committed
}

func addSetCommittedFlag(cmd *cobra.Command) string {
	committed := "committed"
	cmd.Flags().StringVar(&params.set.committed, committed, datastore.Pending.String(), "The state of the data store to write: pending or live")
	return committed
}

func addValuesFlag(cmd *cobra.Command) string {
	values := "values"
	cmd.Flags().BoolVar(&params.key.values, values, false, "Print values along with keys")
	return values
}

func addPrefixFlag(cmd *cobra.Command) string {
	prefix := "prefix"
	cmd.Flags().StringVar(&params.key.prefix, prefix, "", "Restrict the listing to data keys starting with this prefix")
	return prefix
}

func addNewDirectoryFlag(cmd *cobra.Command) string {
	newDirectory := "new-directory"
	cmd.Flags().BoolVar(&params.init.newDirectory, newDirectory, false, "Create a fresh versioned data store directory below the path")
	return newDirectory
}

func addRawFlag(cmd *cobra.Command) string {
	raw := "raw"
	cmd.Flags().BoolVar(&params.metadata.raw, raw, false, "Only look at metadata set on the key itself, not inherited from its parents")
	return raw
}
