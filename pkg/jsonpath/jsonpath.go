// Package jsonpath resolves a small JSONPath dialect ($.a.b[0].c) against
// response bodies using gjson.
package jsonpath

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// Get resolves path against doc and returns the raw gjson result.
func Get(doc []byte, path string) (gjson.Result, error) {
	if len(doc) == 0 {
		return gjson.Result{}, fmt.Errorf("empty JSON document")
	}
	if path == "" {
		return gjson.Result{}, fmt.Errorf("empty JSONPath expression")
	}
	if !gjson.ValidBytes(doc) {
		return gjson.Result{}, fmt.Errorf("invalid JSON document")
	}

	result := gjson.GetBytes(doc, ToGJSON(path))
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("path not found: %s", path)
	}
	return result, nil
}

// Extract resolves path and renders the value as a string. JSON null is
// rendered as "null"; objects and arrays as their raw JSON.
func Extract(doc []byte, path string) (string, error) {
	result, err := Get(doc, path)
	if err != nil {
		return "", err
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ExtractMultiple extracts every named path. Values that resolve are
// returned even when others fail; the error lists the failures.
func ExtractMultiple(doc []byte, paths map[string]string) (map[string]string, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("empty JSON document")
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no JSONPath expressions provided")
	}

	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(paths))
	var failed []string
	for _, name := range names {
		value, err := Extract(doc, paths[name])
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		results[name] = value
	}

	if len(failed) > 0 {
		return results, fmt.Errorf("extraction errors: %s", strings.Join(failed, "; "))
	}
	return results, nil
}

// ToGJSON converts a JSONPath expression to gjson syntax:
//
//	$               -> @this
//	$.users[0].name -> users.0.name
//	$['name']       -> name
//	[1].id          -> 1.id
//
// A path without a leading "$" is treated as already relative to the root,
// so plain gjson paths pass through unchanged.
func ToGJSON(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "$")
	if path == "" {
		return "@this"
	}

	var b strings.Builder
	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				b.WriteString(path[i:])
				return strings.TrimPrefix(b.String(), ".")
			}
			key := strings.Trim(path[i+1:i+end], `'"`)
			b.WriteByte('.')
			b.WriteString(key)
			i += end
		default:
			b.WriteByte(c)
		}
	}
	return strings.TrimPrefix(b.String(), ".")
}
