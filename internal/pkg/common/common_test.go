package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCustomError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("turn: %w", ErrSessionUnavailable.Wrap(cause))

	assert.ErrorIs(t, err, ErrSessionUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrCatalogUnavailable)
	assert.Equal(t, "turn: session store failed: dial tcp: refused", err.Error())

	ce, ok := AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, ce.Status)
	assert.Equal(t, ErrCodeSessionUnavailable, ce.Code)

	_, ok = AsCustomError(cause)
	assert.False(t, ok)
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("decode: %w", NewValidationError("missing request type"))
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(ErrQueueFull))
	assert.Equal(t, "decode: missing request type", err.Error())
}

func TestParseJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	require.NoError(t, ParseJSONBytes([]byte(`{"name": "egg", "extra": 1}`), &v))
	assert.Equal(t, "egg", v.Name)

	assert.Error(t, ParseJSONBytesStrict([]byte(`{"name": "egg", "extra": 1}`), &v))
	assert.Error(t, ParseJSONBytes([]byte(`{"name": "egg"} {"name": "salt"}`), &v))
	require.NoError(t, ParseJSONBytesStrict([]byte(`{"name": "salt"}`+"\n"), &v))
	assert.Equal(t, "salt", v.Name)
}

func TestQuoteJSONKeys(t *testing.T) {
	got := QuoteJSONKeys(`[{type: "inventory_upsert", items: [{name: "egg", quantity_level: 3}]}]`)
	assert.Equal(t, `[{"type": "inventory_upsert", "items": [{"name": "egg", "quantity_level": 3}]}]`, got)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "fenced", in: "```json\n[{\"type\": \"inventory_delete_all\"}]\n```", want: `[{"type": "inventory_delete_all"}]`},
		{name: "prose around", in: `Sure! Here it is: {"a": 1} Hope that helps.`, want: `{"a": 1}`},
		{name: "array first", in: `[1, {"a": 2}]`, want: `[1, {"a": 2}]`},
		{name: "no json", in: "nothing here", want: "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", MaskSecret("short"))
	assert.Equal(t, "sk-o...cdef", MaskSecret("sk-or-v1-abcdef"))
}

func TestLogMasksSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogInfo("config loaded",
		zap.String("openrouter_api_key", "sk-or-v1-abcdef"),
		zap.Int("max_tokens", 1000),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "sk-o...cdef", fields["openrouter_api_key"])
	assert.EqualValues(t, 1000, fields["max_tokens"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("ERROR"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
}

func TestGenerateUUID(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
