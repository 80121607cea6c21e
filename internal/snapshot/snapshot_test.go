package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/metricsdiff/internal/metrics"
)

func TestParse_JSON(t *testing.T) {
	data := []byte(`{
		"design__instance__count": 420,
		"timing__setup__ws__corner:ff": 1.25,
		"timing__hold__ws": 2.0,
		"big": 1e3,
		"design__name": "spm",
		"flow__failed": false,
		"power__total": null
	}`)

	snap, err := Parse(data, FormatJSON, Options{})
	require.NoError(t, err)

	assert.Equal(t, metrics.Snapshot{
		"design__instance__count":      int64(420),
		"timing__setup__ws__corner:ff": 1.25,
		"timing__hold__ws":             2.0,
		"big":                          1000.0,
		"design__name":                 "spm",
		"flow__failed":                 false,
		"power__total":                 nil,
	}, snap)
}

func TestParse_JSONPath(t *testing.T) {
	data := []byte(`{"run": "a", "metrics": {"route__drc_errors": 3}}`)

	snap, err := Parse(data, FormatJSON, Options{JSONPath: "$.metrics"})
	require.NoError(t, err)
	assert.Equal(t, metrics.Snapshot{"route__drc_errors": int64(3)}, snap)

	_, err = Parse(data, FormatJSON, Options{JSONPath: "$.missing"})
	assert.Error(t, err)

	_, err = Parse(data, FormatJSON, Options{JSONPath: "$.run"})
	assert.Error(t, err, "selected value must be an object")
}

func TestParse_RejectsNestedValues(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"nested object", `{"a": {"b": 1}}`},
		{"array", `{"a": [1]}`},
		{"top-level array", `[1, 2]`},
		{"invalid json", `{"a": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatJSON, Options{})
			assert.Error(t, err)
		})
	}
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
design__instance__count: 420
timing__setup__ws__corner:ff: 1.25
design__name: spm
flow__failed: true
power__total: null
`)

	snap, err := Parse(data, FormatYAML, Options{})
	require.NoError(t, err)

	assert.Equal(t, metrics.Snapshot{
		"design__instance__count":      int64(420),
		"timing__setup__ws__corner:ff": 1.25,
		"design__name":                 "spm",
		"flow__failed":                 true,
		"power__total":                 nil,
	}, snap)

	_, err = Parse([]byte(""), FormatYAML, Options{})
	assert.Error(t, err)
	_, err = Parse([]byte("a: [1, 2]"), FormatYAML, Options{})
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("gold.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("gold.YML"))
	assert.Equal(t, FormatJSON, FormatFromPath("gold.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("state_out"))
}

func TestMarshal_SortedWithTrailingNewline(t *testing.T) {
	snap := metrics.Snapshot{"b": int64(2), "a": 0.5, "c": nil}

	out, err := Marshal(snap, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 0.5,\n  \"b\": 2,\n  \"c\": null\n}\n", string(out))

	out, err = Marshal(snap, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "a: 0.5\nb: 2\nc: null\n", string(out))

	out, err = Marshal(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	snap := metrics.Snapshot{
		"design__instance__count__corner:ff": int64(12),
		"timing__setup__ws":                  -0.25,
		"design__name":                       "spm",
	}

	for _, name := range []string{"snap.json", "snap.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(path, snap))

			loaded, err := Load(path, Options{})
			require.NoError(t, err)
			assert.Equal(t, snap, loaded)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.json")
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": {"b": 1}}`), 0o644))

	_, err := Load(path, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}
