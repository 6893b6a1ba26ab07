package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false, "json")

	l.Info("fetched", "source", "Hacker News", "count", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "fetched", line["msg"])
	assert.Equal(t, "Hacker News", line["source"])
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer

	New(&buf, false, "").Debug("hidden")
	assert.Empty(t, buf.String())

	New(&buf, true, "").Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestOrDefault(t *testing.T) {
	assert.Same(t, Logger, OrDefault(nil))

	l := Discard()
	assert.Same(t, l, OrDefault(l))
}
