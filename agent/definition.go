package agent

import (
	"github.com/m4xw311/shortbot/errors"
	"github.com/m4xw311/shortbot/tools"
	"gopkg.in/yaml.v3"
)

// Definition describes an agent: the model it runs on, the instruction
// policy it follows and the tools it may call. It is both the blueprint for
// the local run loop and the payload packaged at deploy time.
type Definition struct {
	Name        string
	Model       string
	Description string
	Instruction string
	Tools       []tools.Tool
}

// Shortener returns the definition of the shortening bot.
func Shortener(model string) *Definition {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Definition{
		Name:        "shortbot",
		Model:       model,
		Description: "A bot that shortens messages and provides output in JSON format.",
		Instruction: Instruction,
		Tools: []tools.Tool{
			&tools.CharacterCountTool{},
			&tools.JSONFormatTool{},
		},
	}
}

type manifestTool struct {
	Name        string                     `yaml:"name"`
	Description string                     `yaml:"description"`
	Parameters  map[string]manifestParam   `yaml:"parameters,omitempty"`
	Required    []string                   `yaml:"required,omitempty"`
}

type manifestParam struct {
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`
}

type manifest struct {
	Name        string         `yaml:"name"`
	Model       string         `yaml:"model"`
	Description string         `yaml:"description,omitempty"`
	Instruction string         `yaml:"instruction"`
	Tools       []manifestTool `yaml:"tools"`
}

// Manifest serializes the definition to YAML for packaging. Tool order
// follows the definition, so output is deterministic.
func (d *Definition) Manifest() ([]byte, error) {
	m := manifest{
		Name:        d.Name,
		Model:       d.Model,
		Description: d.Description,
		Instruction: d.Instruction,
	}
	for _, t := range d.Tools {
		mt := manifestTool{Name: t.Name(), Description: t.Description()}
		if schema := t.Schema(); schema != nil {
			mt.Parameters = make(map[string]manifestParam, len(schema.Properties))
			for name, prop := range schema.Properties {
				mt.Parameters[name] = manifestParam{Type: prop.Type, Description: prop.Description}
			}
			mt.Required = schema.Required
		}
		m.Tools = append(m.Tools, mt)
	}
	out, err := yaml.Marshal(&m)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize agent manifest")
	}
	return out, nil
}
