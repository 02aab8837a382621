package phonemizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/neurlang/goruut/lib"
	"github.com/neurlang/goruut/models/requests"
)

// goruutLanguages maps our language codes to goruut's language names.
var goruutLanguages = map[string]string{
	LangEnglishUS: "English",
	LangPolish:    "Polish",
	LangHungarian: "Hungarian",
}

// GoruutBackend phonemizes in-process via the goruut library. It avoids
// the espeak binary dependency, but its renderings differ from espeak's,
// so the marker restoration tables do not apply to its output.
type GoruutBackend struct {
	phon     *lib.Phonemizer
	language string
}

// NewGoruutBackend creates an embedded backend for one language code.
func NewGoruutBackend(language string) (*GoruutBackend, error) {
	name, ok := goruutLanguages[language]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, language)
	}
	return &GoruutBackend{phon: lib.NewPhonemizer(nil), language: name}, nil
}

// Phonemize converts a single utterance to a phoneme string, one space
// between word renderings.
func (b *GoruutBackend) Phonemize(_ context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	resp := b.phon.Sentence(requests.PhonemizeSentence{
		Language: b.language,
		Sentence: text,
	})

	var sb strings.Builder
	for i, word := range resp.Words {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(word.Phonetic)
	}

	return strings.TrimSpace(sb.String()), nil
}

func (b *GoruutBackend) Close() error { return nil }
