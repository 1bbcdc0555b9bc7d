package cmd

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oneconcern/datastore/pkg/datastore/version"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestInit(t *testing.T) {
	cleanup := setupTests(t)
	defer cleanup()

	assert.Empty(t, runCmd(t, "init"))
	v, err := version.FromFile(storeFs, filepath.Join(testStorePath, versionFile))
	require.NoError(t, err)
	assert.Equal(t, version.Current, v)
	isDir, err := afero.IsDir(storeFs, filepath.Join(testStorePath, "live"))
	require.NoError(t, err)
	assert.True(t, isDir)

	// initializing again is harmless
	runCmd(t, "init")
	assert.Zero(t, exitMocks.fatalCalls())

	out := strings.TrimSpace(runCmd(t, "init", "--new-directory"))
	require.True(t, strings.HasPrefix(out, testStorePath+"/"), out)
	dv, id, err := version.FromDirectoryName(filepath.Base(out))
	require.NoError(t, err)
	assert.Equal(t, version.Current, dv)
	assert.NotEmpty(t, id)

	exists, err := afero.Exists(storeFs, filepath.Join(out, versionFile))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNewerVersionIsRefused(t *testing.T) {
	cleanup := setupTests(t)
	defer cleanup()

	require.NoError(t, version.WriteFile(storeFs, filepath.Join(testStorePath, versionFile), version.New(version.Current.Major+1, 0)))
	runCmd(t, "get", "settings.hostname")
	assert.Equal(t, []int{1}, exitMocks.exitStatuses)
}

func TestSetGetCommit(t *testing.T) {
	cleanup := setupTests(t)
	defer cleanup()
	runCmd(t, "init")

	assert.Empty(t, runCmd(t, "set", "settings.hostname", `"node1"`))
	assert.Empty(t, runCmd(t, "set", "settings.motd", `"hello"`))
	require.Zero(t, exitMocks.fatalCalls())

	assert.Equal(t, "settings.hostname = \"node1\"\n", runCmd(t, "get", "settings.hostname", "--committed", "pending"))

	// not committed yet
	runCmd(t, "get", "settings.hostname")
	assert.Equal(t, []int{int(unix.ENOENT)}, exitMocks.exitStatuses)

	assert.Equal(t, "settings.hostname\nsettings.motd\n", runCmd(t, "commit"))
	assert.Equal(t,
		"settings.hostname = \"node1\"\nsettings.motd = \"hello\"\n",
		runCmd(t, "get", "settings.hostname", "settings.motd"),
	)

	// pending changes are gone
	assert.Empty(t, runCmd(t, "list", "--committed", "pending"))
	assert.Empty(t, runCmd(t, "commit"))
	assert.Len(t, exitMocks.exitStatuses, 1)
}

func TestSetLive(t *testing.T) {
	cleanup := setupTests(t)
	defer cleanup()

	runCmd(t, "set", "settings.updates.seed", "42", "--committed", "live")
	assert.Equal(t, "settings.updates.seed = 42\n", runCmd(t, "get", "settings.updates.seed"))
	assert.Zero(t, exitMocks.fatalCalls())
}

func TestInvalidArguments(t *testing.T) {
	cleanup := setupTests(t)
	defer cleanup()

	for _, args := range [][]string{
		{"set", "settings.hostname", "node1"},
		{"set", "settings..hostname", `"node1"`},
		{"get", "settings/hostname"},
		{"get", "settings.hostname", "--committed", "maybe"},
		{"metadata", "get", "affected.services", "settings.ntp"},
		{"populate", "/no/such/file.toml"},
	} {
		before := exitMocks.fatalCalls()
		runCmd(t, args...)
		assert.Equal(t, before+1, exitMocks.fatalCalls(), "expected %v to fail", args)
	}
}

func TestList(t *testing.T) {
	cleanup := setupTests(t)
	defer cleanup()

	runCmd(t, "set", "settings.ntp.time-servers", `["pool.ntp.org"]`, "--committed", "live")
	runCmd(t, "set", "settings.hostname", `"node1"`, "--committed", "live")
	runCmd(t, "set", "settings.timezone", `"UTC"`)

	assert.Equal(t, "settings.hostname\nsettings.ntp.time-servers\n", runCmd(t, "list"))
	assert.Equal(t, "settings.ntp.time-servers = [\"pool.ntp.org\"]\n", runCmd(t, "list", "settings.ntp", "--values"))
	assert.Equal(t, "settings.timezone\n", runCmd(t, "list", "--committed", "pending"))
	assert.Zero(t, exitMocks.fatalCalls())
}

func TestSettings(t *testing.T) {
	cleanup := setupTests(t)
	defer cleanup()

	runCmd(t, "set", "settings.motd", `"hello"`, "--committed", "live")
	runCmd(t, "set", "settings.ntp.time-servers", `["a.pool.ntp.org","b.pool.ntp.org"]`, "--committed", "live")

	out := runCmd(t, "settings")
	assert.Contains(t, out, "motd: hello\n")
	assert.Contains(t, out, "ntp:\n  time-servers:\n  - a.pool.ntp.org\n  - b.pool.ntp.org\n")

	out = runCmd(t, "settings", "ntp")
	assert.NotContains(t, out, "motd")
	assert.Contains(t, out, "time-servers")
	require.Zero(t, exitMocks.fatalCalls())

	runCmd(t, "set", "settings.motd", `"two\nlines"`, "--committed", "live")
	runCmd(t, "settings")
	assert.Equal(t, 1, exitMocks.fatalCalls())
}

func TestMetadata(t *testing.T) {
	cleanup := setupTests(t)
	defer cleanup()

	runCmd(t, "metadata", "set", "affected-services", "settings.ntp", `["chronyd"]`)
	runCmd(t, "metadata", "set", "affected-services", "settings.motd", `["motd"]`)
	runCmd(t, "metadata", "set", "setting-generator", "settings.motd", `"generate-motd"`)
	require.Zero(t, exitMocks.fatalCalls())

	assert.Equal(t, "[\"chronyd\"]\n", runCmd(t, "metadata", "get", "affected-services", "settings.ntp.time-servers"))

	runCmd(t, "metadata", "get", "affected-services", "settings.ntp.time-servers", "--raw")
	assert.Equal(t, []int{int(unix.ENOENT)}, exitMocks.exitStatuses)

	assert.Equal(t,
		"settings.motd affected-services = [\"motd\"]\n"+
			"settings.motd setting-generator = \"generate-motd\"\n"+
			"settings.ntp affected-services = [\"chronyd\"]\n",
		runCmd(t, "metadata", "list"),
	)
	assert.Equal(t,
		"settings.motd affected-services = [\"motd\"]\nsettings.ntp affected-services = [\"chronyd\"]\n",
		runCmd(t, "metadata", "list", "affected-services"),
	)
	assert.Equal(t,
		"settings.ntp affected-services = [\"chronyd\"]\n",
		runCmd(t, "metadata", "list", "--prefix", "settings.ntp"),
	)
}

func TestPopulate(t *testing.T) {
	cleanup := setupTests(t)
	defer cleanup()

	require.NoError(t, afero.WriteFile(storeFs, "/defaults.toml", []byte(`
[settings]
motd = "welcome"

[settings.ntp]
time-servers = ["pool.ntp.org"]

[metadata.settings.ntp]
affected-services = ["chronyd"]
`), 0644))

	runCmd(t, "set", "settings.motd", `"custom"`, "--committed", "live")
	assert.Equal(t, "settings.ntp.time-servers\n", runCmd(t, "populate", "/defaults.toml"))
	assert.Equal(t, "settings.motd = \"custom\"\n", runCmd(t, "get", "settings.motd"))
	assert.Equal(t, "[\"chronyd\"]\n", runCmd(t, "metadata", "get", "affected-services", "settings.ntp"))

	assert.Empty(t, runCmd(t, "populate", "/defaults.toml"))
	assert.Zero(t, exitMocks.fatalCalls())
}

func TestVersion(t *testing.T) {
	cleanup := setupTests(t)
	defer cleanup()

	out := runCmd(t, "version")
	assert.Contains(t, out, "Version: dev\n")
	assert.Contains(t, out, "Data store version: "+version.Current.String()+"\n")
}

func TestConfigSet(t *testing.T) {
	cleanup := setupTests(t)
	defer cleanup()

	resetFlags(rootCmd)
	rootCmd.SetArgs([]string{"config", "set", "--path", "/srv/datastore", "--loglevel", "debug"})
	require.NoError(t, rootCmd.Execute())
	require.Zero(t, exitMocks.fatalCalls())

	b, err := ioutil.ReadFile(os.Getenv(envConfigLocation))
	require.NoError(t, err)
	assert.Contains(t, string(b), "path: /srv/datastore\n")
	assert.Contains(t, string(b), "loglevel: debug\n")

	// the configured path is used when the flag is not set
	resetFlags(rootCmd)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "/srv/datastore", params.root.path)
}
