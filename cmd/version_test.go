package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "srs-exporter version dev\n", stdout)

	stdout, _, err = executeCommand(t, "", "version", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, stdout, "commit: none")
}
