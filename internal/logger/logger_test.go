package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("page fetched", "source", "ethereum", "records", 900)

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "page fetched")
	assert.Contains(t, out, "source=ethereum")
	assert.Contains(t, out, "records=900")
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")

	assert.Zero(t, buf.Len())
}

func TestInfoWarnError_AlwaysPrinted(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Info("crawl started", "source", "gnosis_chain")
	Warn("retrying page", "cursor", 42)
	Error("crawl failed")

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "crawl started")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "cursor=42")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "crawl failed")
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Section("Tokens")
	assert.Zero(t, buf.Len())

	SetVerbose(true)
	Section("Tokens")
	assert.Equal(t, "\n=== Tokens ===\n", buf.String())
}
