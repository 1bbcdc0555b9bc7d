package cmd

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testStorePath = "/datastore/current"

type ExitMocks struct {
	mock.Mock
	exitStatuses []int
}

func (m *ExitMocks) Fatalf(format string, v ...interface{}) {
	fmt.Printf(format+"\n", v...)
	m.exitStatuses = append(m.exitStatuses, 1)
}

func (m *ExitMocks) Fatalln(v ...interface{}) {
	fmt.Println(v...)
	m.exitStatuses = append(m.exitStatuses, 1)
}

func (m *ExitMocks) Exit(code int) {
	m.exitStatuses = append(m.exitStatuses, code)
}

func (m *ExitMocks) fatalCalls() int {
	return len(m.exitStatuses)
}

func NewExitMocks() *ExitMocks {
	return &ExitMocks{
		exitStatuses: make([]int, 0),
	}
}

var (
	exitMocks *ExitMocks
	stdOut    *bytes.Buffer
)

// setupTests runs commands against an in-memory filesystem, captures their output and mocks exits
func setupTests(t *testing.T) func() {
	dir, err := ioutil.TempDir("", "datastore-cli")
	require.NoError(t, err)
	// a config file which does not exist yet
	require.NoError(t, os.Setenv(envConfigLocation, filepath.Join(dir, "datastore.yaml")))

	color.NoColor = true
	storeFs = afero.NewMemMapFs()
	exitMocks = NewExitMocks()
	logFatalf = exitMocks.Fatalf
	logFatalln = exitMocks.Fatalln
	osExit = exitMocks.Exit
	infoLogger = log.New(ioutil.Discard, "", 0)

	stdOut = new(bytes.Buffer)
	logStdOut = func(format string, args ...interface{}) (int, error) {
		return fmt.Fprintf(stdOut, format, args...)
	}

	return func() {
		_ = os.Unsetenv(envConfigLocation)
		_ = os.RemoveAll(dir)
	}
}

// resetFlags restores the default value of all flags, since they outlive a single execution
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes a command on the test data store and returns its standard output
func runCmd(t *testing.T, args ...string) string {
	resetFlags(rootCmd)
	stdOut.Reset()
	rootCmd.SetArgs(append(args, "--path", testStorePath, "--loglevel", "none"))
	require.NoError(t, rootCmd.Execute(), "executing %v", args)
	return stdOut.String()
}
