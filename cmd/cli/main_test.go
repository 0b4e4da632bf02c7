package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mozjay/osrs-clog-dependencies/internal/cli"
	"github.com/mozjay/osrs-clog-dependencies/internal/testutil"
)

func TestRun_HelpExitsCleanly(t *testing.T) {
	var buf testutil.SafeBuffer
	require.NoError(t, run(&buf, []string{"-help"}))
	assert.Contains(t, buf.String(), "osrs-clog-deps")
}

func TestRun_InvalidFlagReturnsExitError(t *testing.T) {
	var buf testutil.SafeBuffer
	err := run(&buf, []string{"-log-level", "screaming"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestRun_RecoversStartupPanic(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"broken.hcl": `version = `,
	})

	var buf testutil.SafeBuffer
	err := run(&buf, []string{"-config", dir})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "application startup panicked")
}
