// Copyright © 2018 One Concern

package main

import (
	"github.com/oneconcern/datastore/cmd/datastore/cmd"
)

func main() {
	cmd.Execute()
}
