package analysis

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/veridex/authenticity-analyzer/pkg/client"
	"github.com/veridex/authenticity-analyzer/pkg/types"
)

// DefaultLanguage is the translation target when none is configured
const DefaultLanguage = "ko"

// languageNames maps supported target codes to the names used in prompts
var languageNames = map[string]string{
	"ko": "Korean",
	"ja": "Japanese",
	"zh": "Chinese",
	"en": "English",
}

// Translator renders assessment text into a fixed target language.
// Translate never fails: on any failure the original text is returned
// untranslated with an empty language marker.
type Translator struct {
	client   client.LLMClient
	model    string
	language string
}

// NewTranslator creates a translator for the given target language code
func NewTranslator(c client.LLMClient, model, language string) *Translator {
	if language == "" {
		language = DefaultLanguage
	}
	return &Translator{client: c, model: model, language: language}
}

// Language returns the configured target language code
func (t *Translator) Language() string {
	return t.language
}

// Translate converts the text into the target language
func (t *Translator) Translate(ctx context.Context, text string) types.TranslationResult {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.TranslationResult{Text: "", Language: t.language}
	}

	name, ok := languageNames[t.language]
	if !ok {
		name = t.language
	}
	prompt := fmt.Sprintf(translationPromptTemplate, name, text)

	raw, err := t.client.Complete(ctx, t.model, prompt, nil)
	if err != nil {
		log.Printf("translator: %v", err)
		return types.TranslationResult{Text: text, Language: ""}
	}

	translated := strings.TrimSpace(raw)
	translated = strings.Trim(translated, "\"`")
	if translated == "" {
		return types.TranslationResult{Text: text, Language: ""}
	}

	return types.TranslationResult{Text: translated, Language: t.language}
}
