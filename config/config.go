package config

import (
	"os"
	"path/filepath"

	"github.com/m4xw311/shortbot/errors"
	"gopkg.in/yaml.v3"
)

// MCPServer describes an external MCP server whose tools are made available
// to the local agent.
type MCPServer struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// Toolset is a named selection of tools the agent may use.
type Toolset struct {
	Name  string   `yaml:"name"`
	Tools []string `yaml:"tools"`
}

// Config is the local agent configuration, read from .shortbot/config.yaml.
type Config struct {
	LLMClient  string      `yaml:"llm"`
	Model      string      `yaml:"model"`
	Toolsets   []Toolset   `yaml:"toolsets"`
	MCPServers []MCPServer `yaml:"mcp_servers"`
}

// LoadConfig loads configuration from the user's home directory and the
// current working directory, with the latter taking precedence. Absent files
// are fine; defaults produce a working Gemini-backed shortener.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		LLMClient: "gemini",
		Model:     "gemini-2.0-flash",
		Toolsets: []Toolset{
			{Name: "default", Tools: []string{"count_characters", "format_as_json"}},
		},
	}

	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, ".shortbot", "config.yaml")
		if _, err := os.Stat(userConfigPath); err == nil {
			if err := loadFromFile(userConfigPath, cfg); err != nil {
				return nil, errors.Wrapf(err, "error loading user config")
			}
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrapf(err, "could not get working directory")
	}
	projectConfigPath := filepath.Join(wd, ".shortbot", "config.yaml")
	if _, err := os.Stat(projectConfigPath); err == nil {
		if err := loadFromFile(projectConfigPath, cfg); err != nil {
			return nil, errors.Wrapf(err, "error loading project config")
		}
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Unmarshal overwrites fields present in the YAML, so project-level
	// config replaces user-level values.
	return yaml.Unmarshal(data, cfg)
}

// GetToolset finds a toolset by name, falling back to "default".
func (c *Config) GetToolset(name string) (*Toolset, error) {
	if name == "" {
		name = "default"
	}
	for i := range c.Toolsets {
		if c.Toolsets[i].Name == name {
			return &c.Toolsets[i], nil
		}
	}
	if name == "default" {
		return nil, errors.New("mandatory 'default' toolset not found in configuration")
	}
	return c.GetToolset("default")
}
