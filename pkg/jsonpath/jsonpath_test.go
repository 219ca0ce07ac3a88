package jsonpath

import (
	"testing"
)

const fixture = `{
	"name": "John Doe",
	"age": 30,
	"address": {"street": "123 Main St", "city": "Anytown"},
	"phones": [
		{"type": "home", "number": "555-1234"},
		{"type": "work", "number": "555-5678"}
	],
	"active": true,
	"scores": [10, 20, 30, 40],
	"metadata": null
}`

func TestExtract(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		expected      string
		expectedError bool
	}{
		{name: "Simple property", path: "$.name", expected: "John Doe"},
		{name: "Numeric property", path: "$.age", expected: "30"},
		{name: "Boolean property", path: "$.active", expected: "true"},
		{name: "Nested property", path: "$.address.city", expected: "Anytown"},
		{name: "Array element", path: "$.scores[1]", expected: "20"},
		{name: "Object in array", path: "$.phones[0].number", expected: "555-1234"},
		{name: "Bracket key", path: "$['name']", expected: "John Doe"},
		{name: "Plain gjson path", path: "phones.1.type", expected: "work"},
		{name: "Null value", path: "$.metadata", expected: "null"},
		{name: "Non-existent property", path: "$.nonexistent", expectedError: true},
		{name: "Array index out of bounds", path: "$.scores[10]", expectedError: true},
		{name: "Empty path", path: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract([]byte(fixture), tt.path)
			if tt.expectedError {
				if err == nil {
					t.Fatalf("Extract(%q) expected error, got %q", tt.path, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract(%q) unexpected error: %v", tt.path, err)
			}
			if got != tt.expected {
				t.Errorf("Extract(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestGet_InvalidDocument(t *testing.T) {
	if _, err := Get(nil, "$.a"); err == nil {
		t.Error("expected error for empty document")
	}
	if _, err := Get([]byte("not json"), "$.a"); err == nil {
		t.Error("expected error for invalid document")
	}
}

func TestGet_Root(t *testing.T) {
	res, err := Get([]byte(`[1,2,3]`), "$")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsArray() || len(res.Array()) != 3 {
		t.Errorf("root = %s, want the whole array", res.Raw)
	}
}

func TestExtractMultiple(t *testing.T) {
	got, err := ExtractMultiple([]byte(fixture), map[string]string{
		"name": "$.name",
		"city": "$.address.city",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["name"] != "John Doe" || got["city"] != "Anytown" {
		t.Errorf("ExtractMultiple() = %v", got)
	}

	got, err = ExtractMultiple([]byte(fixture), map[string]string{
		"name":    "$.name",
		"missing": "$.missing",
	})
	if err == nil {
		t.Fatal("expected error for missing path")
	}
	if got["name"] != "John Doe" {
		t.Errorf("partial results lost: %v", got)
	}

	if _, err := ExtractMultiple([]byte(fixture), nil); err == nil {
		t.Error("expected error for empty paths")
	}
}

func TestToGJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$", "@this"},
		{"", "@this"},
		{"$.name", "name"},
		{"$.users[0].name", "users.0.name"},
		{"$[1].id", "1.id"},
		{`$["a"]["b"]`, "a.b"},
		{"$.matrix[1][2]", "matrix.1.2"},
		{"data.items", "data.items"},
	}
	for _, tt := range tests {
		if got := ToGJSON(tt.in); got != tt.want {
			t.Errorf("ToGJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
