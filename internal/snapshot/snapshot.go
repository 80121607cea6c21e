// Package snapshot loads and stores metric snapshots: flat JSON or YAML
// objects mapping composite metric names to scalar values.
package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/metricsdiff/internal/metrics"
	"github.com/wesleyorama2/metricsdiff/pkg/jsonpath"
	"github.com/wesleyorama2/metricsdiff/pkg/jsonschema"
)

// Format is a snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Schema is the JSON Schema every snapshot object must satisfy.
const Schema = `{
	"type": "object",
	"additionalProperties": {"type": ["number", "string", "boolean", "null"]}
}`

var schema = jsonschema.MustCompile(Schema)

// Options control how a snapshot is read.
type Options struct {
	// JSONPath selects the snapshot object inside a larger document.
	// Empty selects the whole document.
	JSONPath string
}

// FormatFromPath picks a format from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads a snapshot from a file.
func Load(path string, opts Options) (metrics.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read snapshot %s", path)
	}

	snap, err := Parse(data, FormatFromPath(path), opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse snapshot %s", path)
	}
	return snap, nil
}

// Parse decodes a snapshot. Integral JSON numbers become int64, other
// numbers float64 and null becomes nil.
func Parse(data []byte, format Format, opts Options) (metrics.Snapshot, error) {
	if format == FormatYAML {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		data = converted
	}

	object, err := jsonpath.SelectObject(data, opts.JSONPath)
	if err != nil {
		return nil, err
	}

	if errs := schema.Validate([]byte(object.Raw)); len(errs) > 0 {
		return nil, errors.Wrap(errs, "snapshot must be a flat object of scalar values")
	}

	snap := metrics.Snapshot{}
	object.ForEach(func(key, value gjson.Result) bool {
		snap[key.String()] = scalar(value)
		return true
	})
	return snap, nil
}

func scalar(v gjson.Result) metrics.Value {
	switch v.Type {
	case gjson.Number:
		if !strings.ContainsAny(v.Raw, ".eE") {
			if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
				return n
			}
		}
		return v.Num
	case gjson.String:
		return v.Str
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return nil
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "invalid YAML")
	}
	if doc == nil {
		return nil, errors.New("empty YAML document")
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "YAML document cannot be represented as JSON")
	}
	return out, nil
}

// Marshal encodes a snapshot with its keys sorted.
func Marshal(snap metrics.Snapshot, format Format) ([]byte, error) {
	if snap == nil {
		snap = metrics.Snapshot{}
	}

	if format == FormatYAML {
		if len(snap) == 0 {
			return []byte("{}\n"), nil
		}
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(map[string]metrics.Value(snap)); err != nil {
			return nil, errors.Wrap(err, "failed to encode YAML")
		}
		if err := encoder.Close(); err != nil {
			return nil, errors.Wrap(err, "failed to encode YAML")
		}
		return buf.Bytes(), nil
	}

	out, err := json.MarshalIndent(map[string]metrics.Value(snap), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode JSON")
	}
	return append(out, '\n'), nil
}

// Save writes a snapshot to a file, choosing the format from its extension.
func Save(path string, snap metrics.Snapshot) error {
	data, err := Marshal(snap, FormatFromPath(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write snapshot %s", path)
	}
	return nil
}
