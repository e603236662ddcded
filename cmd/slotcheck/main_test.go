package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFromStdin(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("Here is the schedule:\n- 2:00 PM AVAILABLE\n- 9:00 AM AVAILABLE\n- 10:00 AM UNAVAILABLE")

	require.NoError(t, run([]string{"-mentioned"}, in, &out))
	assert.JSONEq(t, `{
		"slots":["09:00 AM","02:00 PM"],
		"categories":{"morning":["09:00 AM"],"afternoon":["02:00 PM"],"evening":[]},
		"state":"positive",
		"fallbackUsed":false,
		"mentioned":["09:00 AM","10:00 AM","02:00 PM"],
		"outcome":"failure"
	}`, out.String())
}

func TestRunFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply.txt")
	require.NoError(t, os.WriteFile(path, []byte("[BOOKING_CONFIRMED] See you at 16:30"), 0o600))

	var out bytes.Buffer
	require.NoError(t, run([]string{path}, strings.NewReader(""), &out))
	assert.JSONEq(t, `{
		"slots":["04:30 PM"],
		"categories":{"morning":[],"afternoon":["04:30 PM"],"evening":[]},
		"state":"not_found",
		"fallbackUsed":true,
		"outcome":"success"
	}`, out.String())
}

func TestRunMissingFile(t *testing.T) {
	err := run([]string{filepath.Join(t.TempDir(), "nope.txt")}, strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunBadFlag(t *testing.T) {
	err := run([]string{"-bogus"}, strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}
