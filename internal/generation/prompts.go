package generation

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"github.com/phrazzld/scry-concepts/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Prompt names in the catalog
const (
	PromptGenerator      = "generator"
	PromptCritic         = "critic"
	PromptRefinerApprove = "refiner_approve"
	PromptRefinerReject  = "refiner_reject"
	PromptFlashcard      = "flashcard"
)

var requiredPrompts = []string{
	PromptGenerator,
	PromptCritic,
	PromptRefinerApprove,
	PromptRefinerReject,
	PromptFlashcard,
}

// PromptSpec is one catalog entry as written in YAML.
type PromptSpec struct {
	System      string  `yaml:"system"`
	User        string  `yaml:"user"`
	Temperature float64 `yaml:"temperature"`
}

type compiledPrompt struct {
	system      *template.Template
	user        *template.Template
	temperature float64
}

// PromptCatalog holds parsed prompt templates.
type PromptCatalog struct {
	prompts map[string]compiledPrompt
}

// promptData is what every template is rendered with.
type promptData struct {
	MaxLabel     int
	MaxRationale int
	MaxCritique  int
	MinScore     int
	MaxScore     int
	Concept      string
}

// DefaultPromptCatalog parses the embedded catalog.
func DefaultPromptCatalog() (*PromptCatalog, error) {
	return ParsePromptCatalog(defaultPrompts)
}

// LoadPromptCatalog reads a catalog from path, or returns the embedded
// default when path is empty.
func LoadPromptCatalog(path string) (*PromptCatalog, error) {
	if path == "" {
		return DefaultPromptCatalog()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt catalog from %s: %v", ErrInvalidConfig, path, err)
	}
	return ParsePromptCatalog(data)
}

// ParsePromptCatalog parses YAML catalog content. Every required prompt
// must be present with a non-empty system template.
func ParsePromptCatalog(data []byte) (*PromptCatalog, error) {
	var specs map[string]PromptSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt catalog: %v", ErrInvalidConfig, err)
	}

	catalog := &PromptCatalog{prompts: make(map[string]compiledPrompt, len(specs))}
	for _, name := range requiredPrompts {
		spec, ok := specs[name]
		if !ok || spec.System == "" {
			return nil, fmt.Errorf("%w: prompt %q is missing", ErrInvalidConfig, name)
		}

		system, err := template.New(name + ".system").Option("missingkey=error").Parse(spec.System)
		if err != nil {
			return nil, fmt.Errorf("%w: prompt %q: %v", ErrInvalidConfig, name, err)
		}

		var user *template.Template
		if spec.User != "" {
			user, err = template.New(name + ".user").Option("missingkey=error").Parse(spec.User)
			if err != nil {
				return nil, fmt.Errorf("%w: prompt %q: %v", ErrInvalidConfig, name, err)
			}
		}

		catalog.prompts[name] = compiledPrompt{system: system, user: user, temperature: spec.Temperature}
	}
	return catalog, nil
}

// Render produces the system and user text of prompt name. The user text
// is empty when the prompt has no user template.
func (c *PromptCatalog) Render(name, concept string) (system, user string, temperature float64, err error) {
	p, ok := c.prompts[name]
	if !ok {
		return "", "", 0, fmt.Errorf("%w: unknown prompt %q", ErrInvalidConfig, name)
	}

	data := promptData{
		MaxLabel:     domain.MaxLabelLength,
		MaxRationale: domain.MaxRationaleLength,
		MaxCritique:  domain.MaxCritiqueLength,
		MinScore:     domain.MinScore,
		MaxScore:     domain.MaxScore,
		Concept:      concept,
	}

	var buf bytes.Buffer
	if err := p.system.Execute(&buf, data); err != nil {
		return "", "", 0, fmt.Errorf("failed to render prompt %q: %w", name, err)
	}
	system = buf.String()

	if p.user != nil {
		buf.Reset()
		if err := p.user.Execute(&buf, data); err != nil {
			return "", "", 0, fmt.Errorf("failed to render prompt %q: %w", name, err)
		}
		user = buf.String()
	}
	return system, user, p.temperature, nil
}
