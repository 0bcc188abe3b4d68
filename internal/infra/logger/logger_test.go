package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Level(t *testing.T) {
	l, err := New(Config{Level: "warn", Encoding: "json"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_DefaultLevelFollowsMode(t *testing.T) {
	dev, err := New(Config{Development: true})
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	prod, err := New(Config{})
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_UnknownEncoding(t *testing.T) {
	_, err := New(Config{Encoding: "xml"})
	assert.ErrorContains(t, err, "xml")
}

func TestNew_JSONCarriesServiceField(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Encoding: "json", Service: "linkshelf", Output: zapcore.AddSync(&buf)})
	require.NoError(t, err)

	l.Named("catalog").Info("cache invalidated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "linkshelf", entry["service"])
	assert.Equal(t, "catalog", entry["logger"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "cache invalidated", entry["msg"])
}

func TestNew_ConsolePrefixesServiceName(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Development: true, Service: "linkshelf", Output: zapcore.AddSync(&buf)})
	require.NoError(t, err)

	l.Named("catalog").Warn("slow fetch")

	line := strings.TrimSpace(buf.String())
	parts := strings.Split(line, " | ")
	require.GreaterOrEqual(t, len(parts), 5, line)
	assert.Equal(t, "WARN ", parts[1])
	assert.Equal(t, "[linkshelf.catalog]", parts[2])
	assert.Equal(t, "slow fetch", parts[4])
	assert.NotContains(t, line, `"service"`)
}

func TestInit_ReplacesGlobal(t *testing.T) {
	l, err := Init(Config{Development: true, Encoding: "console", Service: "linkshelf"})
	require.NoError(t, err)
	assert.Same(t, l, L())
	assert.NotNil(t, Named("catalog"))
}

func TestLevelEncoder_Colorizes(t *testing.T) {
	assert.NotEqual(t, levelColor(zapcore.WarnLevel), levelColor(zapcore.InfoLevel))
	assert.Equal(t, levelColor(zapcore.InfoLevel), levelColor(zapcore.Level(42)))

	enc := &stringArray{}
	levelEncoder(true)(zapcore.ErrorLevel, enc)
	levelEncoder(false)(zapcore.ErrorLevel, enc)
	require.Len(t, enc.values, 2)
	assert.Equal(t, levelColor(zapcore.ErrorLevel)+"ERROR"+colorReset, enc.values[0])
	assert.Equal(t, "ERROR", enc.values[1])
}

func TestIsTerminal_NilFile(t *testing.T) {
	assert.False(t, isTerminal(nil))
}

type stringArray struct {
	zapcore.PrimitiveArrayEncoder
	values []string
}

func (s *stringArray) AppendString(v string) { s.values = append(s.values, v) }
