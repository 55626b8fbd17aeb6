package engine

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPromptTemplate grounds the assistant in retrieved context only.
const DefaultPromptTemplate = `You are a helpful assistant that answers questions based on the provided context.

Context:
{{context}}

Question: {{question}}

Instructions:
- Answer using only the provided context
- If the information is not in the context, say you do not have that information
- Be clear and concise`

// PromptTemplate renders the retrieval prompt. Placeholders {{context}} and
// {{question}} are substituted verbatim.
type PromptTemplate struct {
	Template string
}

// Render fills the template with the retrieved context and the user question.
func (p *PromptTemplate) Render(contextText, question string) string {
	tpl := DefaultPromptTemplate
	if p != nil && strings.TrimSpace(p.Template) != "" {
		tpl = p.Template
	}
	out := strings.ReplaceAll(tpl, "{{context}}", contextText)
	return strings.ReplaceAll(out, "{{question}}", question)
}

type promptFile struct {
	Template string `yaml:"template"`
}

// LoadPromptFile reads a YAML prompt override from path. The file carries a
// single "template" key.
func LoadPromptFile(path string) (*PromptTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt file: %w", err)
	}

	var parsed promptFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse prompt file %s: %w", path, err)
	}
	if strings.TrimSpace(parsed.Template) == "" {
		return nil, fmt.Errorf("prompt file %s has no template", path)
	}
	return &PromptTemplate{Template: parsed.Template}, nil
}
