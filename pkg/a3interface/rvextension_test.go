package a3interface

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDispatchResponse(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		result   any
		err      error
		expected string
	}{
		{
			name:     "success with string array (VERSION)",
			command:  ":VERSION:",
			result:   []string{"0.0.1", "2026-02-01"},
			expected: `["ok", ["0.0.1","2026-02-01"]]`,
		},
		{
			name:     "success with simple string",
			command:  ":SESSION:START:",
			result:   "ok",
			expected: `["ok", "ok"]`,
		},
		{
			name:     "success with path string",
			command:  ":GETDIR:ARMA:",
			result:   `C:\Program Files\Arma 3`,
			expected: `["ok", "C:\Program Files\Arma 3"]`,
		},
		{
			name:     "success with nil result",
			command:  ":TARGET:POSITION:",
			expected: `["ok"]`,
		},
		{
			name:     "spot accepted",
			command:  ":SPOT:",
			result:   true,
			expected: `["ok", true]`,
		},
		{
			name:     "laser target query rejected",
			command:  ":LASER:TARGET:",
			result:   false,
			expected: `["ok", false]`,
		},
		{
			name:     "error response",
			command:  ":SPOT:",
			err:      errors.New("no handler registered"),
			expected: `["error", "no handler registered"]`,
		},
		{
			name:     "success with map",
			command:  ":STATUS:",
			result:   map[string]int{"entities": 42},
			expected: `["ok", {"entities":42}]`,
		},
		{
			name:     "unencodable result",
			command:  ":STATUS:",
			result:   make(chan int),
			expected: `["error", ":STATUS:: failed to encode result: json: unsupported type: chan int"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatDispatchResponse(tt.command, tt.result, tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResponseFormatConsistency(t *testing.T) {
	t.Run("success responses start with ok", func(t *testing.T) {
		for _, result := range []any{"simple string", []string{"a", "b"}, nil, 42, true} {
			got := formatDispatchResponse(":TEST:", result, nil)
			assert.True(t, strings.HasPrefix(got, `["ok"`))
		}
	})

	t.Run("error responses start with error", func(t *testing.T) {
		got := formatDispatchResponse(":TEST:", nil, errors.New("test error"))
		assert.Equal(t, `["error", "test error"]`, got)
	})
}

func TestWriteArmaCallbackWithoutRegistration(t *testing.T) {
	err := WriteArmaCallback("spotting", `["x"]`)
	assert.ErrorIs(t, err, ErrNoCallback)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, "spotting_engine", Config.extensionName)
	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", Config.rvExtensionVersion)
	assert.Nil(t, GetDispatcher())
}
