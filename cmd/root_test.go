package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"serve", "ingest", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestServeAddrFlag(t *testing.T) {
	flag := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}
