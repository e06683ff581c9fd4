package input

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grovetools/cydantic/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"person.json", KindJSON},
		{"person.JSONC", KindJSON},
		{"person.toml", KindTOML},
		{"person.yaml", KindYAML},
		{"person.yml", KindYAML},
		{"person.txt", KindYAML},
		{Stdin, KindYAML},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.path))
		})
	}
}

func TestRead(t *testing.T) {
	want := map[string]any{"name": "Ada", "age": float64(36)}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "p.json", `{"name": "Ada", "age": 36}`},
		{"jsonc", "p.jsonc", "{\n  // who\n  \"name\": \"Ada\",\n  \"age\": 36,\n}"},
		{"yaml", "p.yaml", "name: Ada\nage: 36\n"},
		{"toml", "p.toml", "name = \"Ada\"\nage = 36\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := Read(path, nil)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestReadStdin(t *testing.T) {
	got, err := Read(Stdin, strings.NewReader(`{"name": "Ada"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ada"}, got)
}

func TestReadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Read(filepath.Join(t.TempDir(), "nope.json"), nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeInputInvalid))
	})

	t.Run("malformed document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"name": `), 0o644))

		_, err := Read(path, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeInputInvalid))
		assert.Contains(t, err.Error(), "bad.json")
	})
}
