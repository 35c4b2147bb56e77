package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRootCmd_RegistersAllSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"collection", "index", "search", "vsearch", "query", "get", "multi-get", "status", "serve", "watch", "ui", "version"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		assert.NoError(t, err, "expected subcommand %q to be registered", name)
		assert.NotNil(t, cmd)
	}
}
