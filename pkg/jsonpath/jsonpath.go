package jsonpath

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// Select returns the value at a JSONPath expression in a JSON document.
// An empty path or "$" selects the whole document.
func Select(json []byte, path string) (gjson.Result, error) {
	if len(json) == 0 {
		return gjson.Result{}, errors.New("empty JSON document")
	}
	if !gjson.ValidBytes(json) {
		return gjson.Result{}, errors.New("invalid JSON document")
	}

	result := gjson.GetBytes(json, ToGjsonPath(path))
	if !result.Exists() {
		return gjson.Result{}, errors.Newf("path not found: %s", path)
	}
	return result, nil
}

// SelectObject is like Select but requires the selected value to be a JSON
// object.
func SelectObject(json []byte, path string) (gjson.Result, error) {
	result, err := Select(json, path)
	if err != nil {
		return gjson.Result{}, err
	}
	if !result.IsObject() {
		return gjson.Result{}, errors.Newf("value at %q is not an object", displayPath(path))
	}
	return result, nil
}

// ToGjsonPath converts a JSONPath expression to a gjson path.
//
//	$                -> @this
//	$.metrics        -> metrics
//	$['metrics']     -> metrics
//	$.steps[2].data  -> steps.2.data
func ToGjsonPath(path string) string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	// bracket notation with quotes: ['name'] or ["name"]
	for _, quote := range []string{"'", "\""} {
		if strings.Contains(path, "["+quote) {
			path = strings.ReplaceAll(path, "["+quote, ".")
			path = strings.ReplaceAll(path, quote+"]", "")
		}
	}

	// array indices: [n] -> .n
	path = strings.ReplaceAll(path, "[", ".")
	path = strings.ReplaceAll(path, "]", "")

	return strings.TrimPrefix(path, ".")
}

func displayPath(path string) string {
	if path == "" {
		return "$"
	}
	return path
}
