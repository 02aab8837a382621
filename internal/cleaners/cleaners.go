// Package cleaners defines the named text-transform pipelines that sit
// around the phonemization call. Each pipeline is a fixed ordered step
// list resolved at startup and selected by name; an unknown name is a
// configuration error, never a silent fallback.
package cleaners

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/example/go-matcha-text/internal/markers"
	"github.com/example/go-matcha-text/internal/phonemizer"
	"github.com/mozillazg/go-unidecode"
)

// ErrUnknownPipeline is returned by Lookup for an undefined pipeline name.
var ErrUnknownPipeline = errors.New("unknown cleaner pipeline")

// Step is one named transform in a pipeline.
type Step int

const (
	StepEncodeMarkers Step = iota
	StepTransliterate
	StepLowercase
	StepExpandAbbreviations
	StepPhonemize
	StepNasalRemap
	StepRemoveBrackets
	StepCollapseWhitespace
	StepDecodeMarkers
	StepSimplifyIPA
)

// Pipeline is an immutable ordered step list plus the phonemizer language
// used by its StepPhonemize, empty when the pipeline never phonemizes.
type Pipeline struct {
	Name     string
	Language string
	Steps    []Step
}

// SupportsMarkers reports whether the pipeline carries special vocal
// markers through phonemization. Hungarian deliberately does not.
func (p Pipeline) SupportsMarkers() bool {
	for _, s := range p.Steps {
		if s == StepDecodeMarkers {
			return true
		}
	}
	return false
}

var pipelines = []Pipeline{
	{
		Name:  "basic_cleaners",
		Steps: []Step{StepLowercase, StepCollapseWhitespace},
	},
	{
		Name:  "transliteration_cleaners",
		Steps: []Step{StepTransliterate, StepLowercase, StepCollapseWhitespace},
	},
	{
		Name:     "english_cleaners2",
		Language: phonemizer.LangEnglishUS,
		Steps: []Step{
			StepEncodeMarkers,
			StepTransliterate,
			StepLowercase,
			StepExpandAbbreviations,
			StepPhonemize,
			StepRemoveBrackets,
			StepCollapseWhitespace,
			StepDecodeMarkers,
		},
	},
	{
		Name:     "polish_cleaners",
		Language: phonemizer.LangPolish,
		Steps: []Step{
			StepEncodeMarkers,
			StepLowercase,
			StepPhonemize,
			StepNasalRemap,
			StepRemoveBrackets,
			StepCollapseWhitespace,
			StepDecodeMarkers,
		},
	},
	{
		Name:     "hungarian_cleaners",
		Language: phonemizer.LangHungarian,
		Steps: []Step{
			StepLowercase,
			StepPhonemize,
			StepRemoveBrackets,
			StepCollapseWhitespace,
		},
	},
	{
		Name:  "ipa_simplifier",
		Steps: []Step{StepSimplifyIPA, StepCollapseWhitespace},
	},
}

var byName = func() map[string]Pipeline {
	m := make(map[string]Pipeline, len(pipelines))
	for _, p := range pipelines {
		m[p.Name] = p
	}
	return m
}()

// Names returns the defined pipeline names in definition order.
func Names() []string {
	names := make([]string, len(pipelines))
	for i, p := range pipelines {
		names[i] = p.Name
	}
	return names
}

// Lookup resolves a pipeline by name.
func Lookup(name string) (Pipeline, error) {
	p, ok := byName[name]
	if !ok {
		return Pipeline{}, fmt.Errorf("%w: %q (defined: %s)", ErrUnknownPipeline, name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Run applies the pipeline's steps in order. The pool supplies the
// phonemizer backend for (pipeline language, workerKey).
func (p Pipeline) Run(ctx context.Context, pool *phonemizer.Pool, workerKey, text string) (string, error) {
	for _, step := range p.Steps {
		switch step {
		case StepEncodeMarkers:
			text = markers.Encode(text)
		case StepTransliterate:
			text = unidecode.Unidecode(text)
		case StepLowercase:
			text = strings.ToLower(text)
		case StepExpandAbbreviations:
			text = expandAbbreviations(text)
		case StepPhonemize:
			backend, err := pool.Get(p.Language, workerKey)
			if err != nil {
				return "", err
			}
			phonemes, err := backend.Phonemize(ctx, text)
			if err != nil {
				return "", err
			}
			text = phonemes
		case StepNasalRemap:
			// The vocabulary has no combining tilde; the nasal component
			// of Polish nasal vowels is mapped to an unused glyph.
			text = strings.ReplaceAll(text, "\u0303", "ʷ")
		case StepRemoveBrackets:
			text = RemoveBrackets(text)
		case StepCollapseWhitespace:
			text = CollapseWhitespace(text)
		case StepDecodeMarkers:
			text = markers.Decode(text, p.Language)
		case StepSimplifyIPA:
			text = simplifyIPA(text)
		default:
			return "", fmt.Errorf("pipeline %s: unhandled step %d", p.Name, step)
		}
	}
	return text, nil
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	bracketsRe   = regexp.MustCompile(`[\[\]\(\)\{\}]`)
)

// CollapseWhitespace replaces each whitespace run with a single space.
func CollapseWhitespace(text string) string {
	return whitespaceRe.ReplaceAllString(text, " ")
}

// RemoveBrackets deletes bracket characters espeak occasionally leaves in.
func RemoveBrackets(text string) string {
	return bracketsRe.ReplaceAllString(text, "")
}

// ipaSimplifications reduce rarer IPA variants to the common forms the
// training data uses. Order matters: the stressed schwa rule must see the
// output of the ɐ rule.
var ipaSimplifications = []struct{ from, to string }{
	{"ɐ", "ə"},
	{"ˈə", "ə"},
	{"ʤ", "dʒ"},
	{"ʧ", "tʃ"},
	{"ᵻ", "ɪ"},
}

func simplifyIPA(text string) string {
	for _, r := range ipaSimplifications {
		text = strings.ReplaceAll(text, r.from, r.to)
	}
	return text
}
