package tools

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"unicode/utf8"
)

func TestCharacterCount(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", "0"},
		{"ascii", "hello", "5"},
		{"spaces-count", "a b c", "5"},
		{"long-original", "This is a very long message that needs to be shortened significantly", "68"},
		{"shortened", "Long message needing big cuts", "29"},
		// Code points, not bytes: "héllo" is 6 bytes but 5 characters.
		{"multibyte", "héllo", "5"},
		{"cjk", "你好世界", "4"},
	}

	tool := &CharacterCountTool{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tool.Execute(context.Background(), map[string]interface{}{"text": tc.text})
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if got != tc.want {
				t.Errorf("count_characters(%q) = %s, want %s", tc.text, got, tc.want)
			}
			if got != strconv.Itoa(utf8.RuneCountInString(tc.text)) {
				t.Errorf("count must equal the literal rune length of the input")
			}
		})
	}
}

func TestCharacterCountMissingArg(t *testing.T) {
	tool := &CharacterCountTool{}
	if _, err := tool.Execute(context.Background(), map[string]interface{}{}); err == nil {
		t.Error("expected error for missing 'text' argument")
	}
	if _, err := tool.Execute(context.Background(), map[string]interface{}{"text": 42}); err == nil {
		t.Error("expected error for non-string 'text' argument")
	}
}

func TestJSONFormatDeterministic(t *testing.T) {
	tool := &JSONFormatTool{}
	args := map[string]interface{}{
		"original_character_count": 68,
		"new_character_count":      29,
		"new_message":              "Long message needing big cuts",
	}

	first, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := tool.Execute(context.Background(), args)
		if err != nil {
			t.Fatalf("Execute() error on repeat call: %v", err)
		}
		if again != first {
			t.Fatalf("output not byte-identical across calls:\n%s\nvs\n%s", first, again)
		}
	}
}

func TestJSONFormatEnvelope(t *testing.T) {
	original := "This is a very long message that needs to be shortened significantly"
	shortened := "Long message needing big cuts"

	counter := &CharacterCountTool{}
	origCount, err := counter.Execute(context.Background(), map[string]interface{}{"text": original})
	if err != nil {
		t.Fatalf("counting original: %v", err)
	}
	newCount, err := counter.Execute(context.Background(), map[string]interface{}{"text": shortened})
	if err != nil {
		t.Fatalf("counting shortened: %v", err)
	}

	origN, _ := strconv.Atoi(origCount)
	newN, _ := strconv.Atoi(newCount)

	formatter := &JSONFormatTool{}
	out, err := formatter.Execute(context.Background(), map[string]interface{}{
		"original_character_count": origN,
		"new_character_count":      newN,
		"new_message":              shortened,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	var envelope struct {
		OriginalCharacterCount int    `json:"original_character_count"`
		NewCharacterCount      int    `json:"new_character_count"`
		NewMessage             string `json:"new_message"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		t.Fatalf("envelope is not valid JSON: %v\n%s", err, out)
	}
	if envelope.OriginalCharacterCount != 68 {
		t.Errorf("original_character_count = %d, want 68", envelope.OriginalCharacterCount)
	}
	if envelope.NewCharacterCount != 29 {
		t.Errorf("new_character_count = %d, want 29", envelope.NewCharacterCount)
	}
	if envelope.NewMessage != shortened {
		t.Errorf("new_message = %q, want %q", envelope.NewMessage, shortened)
	}
}

func TestJSONFormatPreservesKeys(t *testing.T) {
	tool := &JSONFormatTool{}
	args := map[string]interface{}{
		"a": 1, "b": "two", "c": 3.5, "d": true, "e": nil,
	}
	out, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != len(args) {
		t.Errorf("decoded %d keys, want %d", len(decoded), len(args))
	}
	for k := range args {
		if _, ok := decoded[k]; !ok {
			t.Errorf("key %q was dropped from output", k)
		}
	}
}

func TestJSONFormatIndentation(t *testing.T) {
	tool := &JSONFormatTool{}
	out, err := tool.Execute(context.Background(), map[string]interface{}{"new_message": "hi"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	want := "{\n    \"new_message\": \"hi\"\n}"
	if out != want {
		t.Errorf("unexpected serialization:\n%q\nwant:\n%q", out, want)
	}
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	resolved, err := r.Resolve([]string{"count_characters", "format_as_json"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("resolved %d tools, want 2", len(resolved))
	}
	if _, err := r.Resolve([]string{"no_such_tool"}); err == nil {
		t.Error("expected error for unregistered tool")
	}
	if _, err := r.Resolve([]string{"ghost:*"}); err == nil {
		t.Error("expected error for unattached MCP server wildcard")
	}
}
