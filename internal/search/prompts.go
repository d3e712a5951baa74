package search

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Prompt is one configured search task.
type Prompt struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Query string `yaml:"query"`
}

// PromptFile is the prompts YAML document: shared instruction and output format
// plus the list of queries.
type PromptFile struct {
	BaseInstruction string   `yaml:"base_instruction"`
	OutputFormat    string   `yaml:"output_format"`
	Prompts         []Prompt `yaml:"prompts"`
}

// LoadPrompts reads and validates a prompts file.
func LoadPrompts(path string) (*PromptFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts: %w", err)
	}

	var pf PromptFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse prompts %s: %w", path, err)
	}
	if err := pf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid prompts %s: %w", path, err)
	}
	return &pf, nil
}

// Validate checks that every prompt has a unique id and a query.
func (pf *PromptFile) Validate() error {
	if len(pf.Prompts) == 0 {
		return fmt.Errorf("no prompts defined")
	}
	seen := make(map[string]bool, len(pf.Prompts))
	for i, p := range pf.Prompts {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("prompt %d has no id", i+1)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate prompt id %q", p.ID)
		}
		seen[p.ID] = true
		if strings.TrimSpace(p.Query) == "" {
			return fmt.Errorf("prompt %q has no query", p.ID)
		}
	}
	return nil
}

// Find returns the prompt with the given id.
func (pf *PromptFile) Find(id string) (Prompt, bool) {
	for _, p := range pf.Prompts {
		if p.ID == id {
			return p, true
		}
	}
	return Prompt{}, false
}

// Compose builds the text sent for one prompt: instruction, output format and query
// separated by blank lines.
func (pf *PromptFile) Compose(p Prompt) string {
	return pf.BaseInstruction + "\n\n" + pf.OutputFormat + "\n\n" + p.Query
}
