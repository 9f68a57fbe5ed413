package llm

import (
	_ "embed"
	"math/rand/v2"
	"strings"
)

// CategoryPlaceholder é substituído pela categoria sorteada no template.
const CategoryPlaceholder = "{{CATEGORY}}"

var (
	//go:embed categories.txt
	categoriesFile string

	//go:embed prompt.txt
	promptFile string
)

// Categories devolve a lista padrão de categorias de site.
func Categories() []string {
	var out []string
	for _, line := range strings.Split(categoriesFile, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// DefaultPromptTemplate é o prompt de geração de página com o placeholder.
func DefaultPromptTemplate() string { return strings.TrimSpace(promptFile) }

// PromptBuilder sorteia uma categoria e monta o prompt final.
// Seguro para uso concorrente.
type PromptBuilder struct {
	Template   string
	Categories []string

	pick func(n int) int
}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		Template:   DefaultPromptTemplate(),
		Categories: Categories(),
	}
}

func (b *PromptBuilder) Build() (category, prompt string) {
	if b == nil || len(b.Categories) == 0 {
		return "", ""
	}
	pick := b.pick
	if pick == nil {
		pick = rand.IntN
	}
	category = b.Categories[pick(len(b.Categories))]
	return category, strings.ReplaceAll(b.Template, CategoryPlaceholder, category)
}
