package tools

import (
	"context"
	"encoding/json"
	"strconv"
	"unicode/utf8"

	"github.com/m4xw311/shortbot/errors"
)

// CharacterCountTool reports the length of a piece of text. Lengths are
// counted in Unicode code points, not bytes, so multi-byte characters count
// as one.
type CharacterCountTool struct{}

func (t *CharacterCountTool) Name() string { return "count_characters" }

func (t *CharacterCountTool) Description() string {
	return "Counts the number of characters in a piece of text. Args: text (string)."
}

func (t *CharacterCountTool) Schema() *Schema {
	return &Schema{
		Properties: map[string]Property{
			"text": {Type: "string", Description: "The text to count characters of."},
		},
		Required: []string{"text"},
	}
}

func (t *CharacterCountTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	text, ok := args["text"].(string)
	if !ok {
		return "", errors.New("missing or invalid 'text' argument")
	}
	return strconv.Itoa(utf8.RuneCountInString(text)), nil
}

// JSONFormatTool renders the arguments it is given as an indented JSON
// object. Output is deterministic: encoding/json sorts object keys, the
// indent is four spaces, and every argument appears exactly once.
type JSONFormatTool struct{}

func (t *JSONFormatTool) Name() string { return "format_as_json" }

func (t *JSONFormatTool) Description() string {
	return "Formats the given named arguments into an indented JSON object string."
}

func (t *JSONFormatTool) Schema() *Schema {
	return &Schema{
		Properties: map[string]Property{
			"original_character_count": {Type: "integer", Description: "Character count of the original message."},
			"new_character_count":      {Type: "integer", Description: "Character count of the shortened message."},
			"new_message":              {Type: "string", Description: "The shortened message."},
		},
	}
}

func (t *JSONFormatTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	out, err := json.MarshalIndent(args, "", "    ")
	if err != nil {
		return "", errors.Wrapf(err, "failed to format arguments as JSON")
	}
	return string(out), nil
}
