package tools

import (
	"testing"
)

func TestBaseToolSchema(t *testing.T) {
	properties := map[string]interface{}{
		"url": map[string]interface{}{
			"type":        "string",
			"description": "The URL",
		},
	}
	required := []string{"url"}

	schema := BaseToolSchema(properties, required)

	if schema["type"] != "object" {
		t.Errorf("expected type 'object', got '%v'", schema["type"])
	}

	if _, ok := schema["properties"]; !ok {
		t.Error("schema should have 'properties' field")
	}

	if _, ok := schema["required"]; !ok {
		t.Error("schema should have 'required' field")
	}
}

func TestBaseToolSchema_NoRequired(t *testing.T) {
	schema := BaseToolSchema(map[string]interface{}{}, nil)
	if _, ok := schema["required"]; ok {
		t.Error("schema should omit 'required' when nothing is required")
	}
}

func TestToolCall_GetArgumentsXML(t *testing.T) {
	tc := &ToolCall{Arguments: ArgumentsBlock{InnerXML: []byte("<url>https://example.com</url>")}}
	want := "<arguments><url>https://example.com</url></arguments>"
	if got := string(tc.GetArgumentsXML()); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	empty := &ToolCall{}
	if got := string(empty.GetArgumentsXML()); got != "<arguments></arguments>" {
		t.Errorf("expected empty arguments element, got %q", got)
	}
}
