package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug", "").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("nonsense", "").GetLevel())
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newWithOutput(&buf, "info", "JSON")
	l.WithField("component", "api").Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "api", entry["component"])
}
