package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepWritesPrefixedLine(t *testing.T) {
	var buf bytes.Buffer
	a := NewAnnouncer(&buf)

	a.Step("Installing dependencies ..")

	assert.Equal(t, "[prepare-test-environment] Installing dependencies ..\n", buf.String())
}

func TestStepFormatting(t *testing.T) {
	var buf bytes.Buffer
	a := NewAnnouncer(&buf)

	a.Step("Installing %s (%s) ..", "requests", "2.6.0")

	assert.Contains(t, buf.String(), "Installing requests (2.6.0) ..")
}

func TestNoColorForPlainWriter(t *testing.T) {
	var buf bytes.Buffer
	a := NewAnnouncer(&buf)

	a.Step("plain")

	// No escape sequences when the writer is not a terminal
	assert.NotContains(t, buf.String(), "\x1b[")
}
