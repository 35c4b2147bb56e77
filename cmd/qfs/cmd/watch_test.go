package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWatchCmd_UnknownCollectionErrorsBeforeWatching(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	watchCmd := newWatchCmd()
	watchCmd.SetArgs([]string{"nope"})
	assert.Error(t, watchCmd.Execute())
}
