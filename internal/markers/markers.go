// Package markers carries special vocal tags (laughter, hesitation, ...)
// through the phonemizer. Tags are rewritten to pronounceable placeholder
// text before phonemization, then the engine's rendering of each placeholder
// is substituted with the reserved vocabulary symbol afterwards.
package markers

import (
	"log/slog"
	"strings"

	"github.com/example/go-matcha-text/internal/phonemizer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// marker binds one input tag to its placeholder text and output symbol.
// The placeholder is a pronounceable ASCII word bracketed by a tilde on
// each side, so the engine renders it as three stable sub-tokens.
type marker struct {
	Tag         string
	Placeholder string
	Symbol      string
}

var table = []marker{
	{"<UH>", " ~UH~ ", "⟨ᴜʜ⟩"},
	{"<UM>", " ~UM~ ", "⟨ᴜᴍ⟩"},
	{"<LAUGH>", " ~LAUGH~ ", "⟨ʟᴀᴜɢʜ⟩"},
	{"<GIGGLE>", " ~GIGGLE~ ", "⟨ɢɪɢɢʟᴇ⟩"},
	{"<CHUCKLE>", " ~CHUCKLE~ ", "⟨ᴄʜᴜᴄᴋʟᴇ⟩"},
	{"<SIGH>", " ~SIGH~ ", "⟨ꜱɪɢʜ⟩"},
	{"<COUGH>", " ~COUGH~ ", "⟨ᴄᴏᴜɢʜ⟩"},
	{"<SNIFFLE>", " ~SNIFFLE~ ", "⟨ꜱɴɪꜰꜰʟᴇ⟩"},
	{"<GROAN>", " ~GROAN~ ", "⟨ɢʀᴏᴀɴ⟩"},
	{"<YAWN>", " ~YAWN~ ", "⟨ʏᴀᴡɴ⟩"},
	{"<GASP>", " ~GASP~ ", "⟨ɢᴀꜱᴘ⟩"},
}

// restoration maps one exact phonemized placeholder rendering to its symbol.
type restoration struct {
	Phonemes string
	Symbol   string
}

// restorations holds the per-language restoration tables. The patterns are
// the literal renderings espeak-ng produces for the lowercased placeholders
// under each language's phonetic rules; they must not be fuzz-matched.
var restorations = map[string][]restoration{
	phonemizer.LangEnglishUS: {
		{"tˈɪldə ˈʌ tˈɪldə", "⟨ᴜʜ⟩"},
		{"tˈɪldə ˈʌm tˈɪldə", "⟨ᴜᴍ⟩"},
		{"tˈɪldə lˈæf tˈɪldə", "⟨ʟᴀᴜɢʜ⟩"},
		{"tˈɪldə ɡˈɪɡəl tˈɪldə", "⟨ɢɪɢɢʟᴇ⟩"},
		{"tˈɪldə tʃˈʌkəl tˈɪldə", "⟨ᴄʜᴜᴄᴋʟᴇ⟩"},
		{"tˈɪldə sˈaɪ tˈɪldə", "⟨ꜱɪɢʜ⟩"},
		{"tˈɪldə kˈɔf tˈɪldə", "⟨ᴄᴏᴜɢʜ⟩"},
		{"tˈɪldə snˈɪfəl tˈɪldə", "⟨ꜱɴɪꜰꜰʟᴇ⟩"},
		{"tˈɪldə ɡrˈoʊn tˈɪldə", "⟨ɢʀᴏᴀɴ⟩"},
		{"tˈɪldə jˈɔːn tˈɪldə", "⟨ʏᴀᴡɴ⟩"},
		{"tˈɪldə ɡˈæsp tˈɪldə", "⟨ɢᴀꜱᴘ⟩"},
	},
	phonemizer.LangPolish: {
		{"tˈɨlda ˈu tˈɨlda", "⟨ᴜʜ⟩"},
		{"tˈɨlda ˈum tˈɨlda", "⟨ᴜᴍ⟩"},
		{"tˈɨlda lˈawk tˈɨlda", "⟨ʟᴀᴜɢʜ⟩"},
		{"tˈɨlda ɡˈiɡɛl tˈɨlda", "⟨ɢɪɢɢʟᴇ⟩"},
		{"tˈɨlda tʃˈakɛl tˈɨlda", "⟨ᴄʜᴜᴄᴋʟᴇ⟩"},
		{"tˈɨlda saɪ tˈɨlda", "⟨ꜱɪɢʜ⟩"},
		{"tˈɨlda kof tˈɨlda", "⟨ᴄᴏᴜɢʜ⟩"},
		{"tˈɨlda snɨfɛl tˈɨlda", "⟨ꜱɴɪꜰꜰʟᴇ⟩"},
		{"tˈɨlda ɡron tˈɨlda", "⟨ɢʀᴏᴀɴ⟩"},
		{"tˈɨlda javn tˈɨlda", "⟨ʏᴀᴡɴ⟩"},
		{"tˈɨlda ɡasp tˈɨlda", "⟨ɢᴀꜱᴘ⟩"},
	},
}

// residue is the per-language rendering of the tilde bracket word. Its
// presence after Decode means a placeholder was not restored (engine drift).
var residue = map[string]string{
	phonemizer.LangEnglishUS: "tˈɪldə",
	phonemizer.LangPolish:    "tˈɨlda",
}

var restorationMisses = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "matchatext_marker_restoration_misses_total",
	Help: "Placeholder renderings left unrestored after marker decode",
}, []string{"language"})

// Encode replaces every occurrence of every known tag with its placeholder
// text. Matching is a literal, case-sensitive substring replacement over
// the whole table.
func Encode(text string) string {
	for _, m := range table {
		text = strings.ReplaceAll(text, m.Tag, m.Placeholder)
	}
	return text
}

// Decode substitutes the known phonemized placeholder renderings for the
// given language with their output symbols. A rendering that is not present
// verbatim is left in place; that degradation is counted, not raised.
func Decode(phonemes, language string) string {
	for _, r := range restorations[language] {
		phonemes = strings.ReplaceAll(phonemes, r.Phonemes, r.Symbol)
	}

	if res, ok := residue[language]; ok && strings.Contains(phonemes, res) {
		restorationMisses.WithLabelValues(language).Inc()
		slog.Debug("marker restoration miss", "language", language)
	}

	return phonemes
}

// Supported reports whether a restoration table exists for the language.
func Supported(language string) bool {
	_, ok := restorations[language]
	return ok
}

// Tags returns the input tags in table order.
func Tags() []string {
	tags := make([]string, len(table))
	for i, m := range table {
		tags[i] = m.Tag
	}
	return tags
}

// SymbolFor returns the output symbol for an input tag.
func SymbolFor(tag string) (string, bool) {
	for _, m := range table {
		if m.Tag == tag {
			return m.Symbol, true
		}
	}
	return "", false
}
