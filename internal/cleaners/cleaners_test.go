package cleaners

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/go-matcha-text/internal/phonemizer"
)

// scriptedBackend mimics espeak word by word: known words (including the
// lowercased marker placeholders) map to canned renderings, everything
// else to a fixed IPA-safe stand-in. It records the text it was given.
type scriptedBackend struct {
	words map[string]string
	seen  []string
}

var englishWords = map[string]string{
	"~uh~":      "tˈɪldə ˈʌ tˈɪldə",
	"~um~":      "tˈɪldə ˈʌm tˈɪldə",
	"~laugh~":   "tˈɪldə lˈæf tˈɪldə",
	"~giggle~":  "tˈɪldə ɡˈɪɡəl tˈɪldə",
	"~chuckle~": "tˈɪldə tʃˈʌkəl tˈɪldə",
	"~sigh~":    "tˈɪldə sˈaɪ tˈɪldə",
	"~cough~":   "tˈɪldə kˈɔf tˈɪldə",
	"~sniffle~": "tˈɪldə snˈɪfəl tˈɪldə",
	"~groan~":   "tˈɪldə ɡrˈoʊn tˈɪldə",
	"~yawn~":    "tˈɪldə jˈɔːn tˈɪldə",
	"~gasp~":    "tˈɪldə ɡˈæsp tˈɪldə",
	"i":         "ˈaɪ",
	"was":       "wˈɒz",
	"there":     "ðˈɛr",
	"mister":    "mˈɪstɚ",
	"smith":     "smˈɪθ",
}

func (s *scriptedBackend) Phonemize(_ context.Context, text string) (string, error) {
	s.seen = append(s.seen, text)

	var out []string
	for _, w := range strings.Fields(text) {
		if ph, ok := s.words[w]; ok {
			out = append(out, ph)
		} else {
			out = append(out, "ə")
		}
	}
	return strings.Join(out, " "), nil
}

func (s *scriptedBackend) Close() error { return nil }

func newScriptedPool(t *testing.T, words map[string]string) (*phonemizer.Pool, *scriptedBackend) {
	t.Helper()
	backend := &scriptedBackend{words: words}
	factory := func(string) (phonemizer.Backend, error) { return backend, nil }
	return phonemizer.NewPool(factory, phonemizer.Languages()...), backend
}

func TestLookupUnknownPipeline(t *testing.T) {
	_, err := Lookup("german_cleaners")
	if !errors.Is(err, ErrUnknownPipeline) {
		t.Fatalf("Lookup error = %v; want ErrUnknownPipeline", err)
	}
	if !strings.Contains(err.Error(), "german_cleaners") {
		t.Errorf("error %q does not name the offending pipeline", err)
	}
}

func TestLookupDefinedPipelines(t *testing.T) {
	for _, name := range Names() {
		p, err := Lookup(name)
		if err != nil {
			t.Errorf("Lookup(%s): %v", name, err)
		}
		if p.Name != name {
			t.Errorf("Lookup(%s) returned pipeline %q", name, p.Name)
		}
	}
}

func TestBasicCleaners(t *testing.T) {
	p, err := Lookup("basic_cleaners")
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.Run(context.Background(), nil, "w", "Hello \t  WORLD\n!")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "hello world !" {
		t.Errorf("basic_cleaners = %q; want %q", got, "hello world !")
	}
}

func TestTransliterationCleaners(t *testing.T) {
	p, err := Lookup("transliteration_cleaners")
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.Run(context.Background(), nil, "w", "Héllo  Wörld")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "hello world" {
		t.Errorf("transliteration_cleaners = %q; want %q", got, "hello world")
	}
}

func TestEnglishMarkerRoundTrip(t *testing.T) {
	pool, _ := newScriptedPool(t, englishWords)
	p, err := Lookup("english_cleaners2")
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.Run(context.Background(), pool, "w", "I was <LAUGH> there")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got != "ˈaɪ wˈɒz ⟨ʟᴀᴜɢʜ⟩ ðˈɛr" {
		t.Errorf("english_cleaners2 = %q", got)
	}
	if strings.Contains(got, "laugh") || strings.Contains(got, "~") {
		t.Errorf("placeholder remnants in %q", got)
	}
}

func TestEnglishMultipleMarkers(t *testing.T) {
	pool, _ := newScriptedPool(t, englishWords)
	p, _ := Lookup("english_cleaners2")

	got, err := p.Run(context.Background(), pool, "w", "<UM> a <UM> b <UM>")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if n := strings.Count(got, "⟨ᴜᴍ⟩"); n != 3 {
		t.Errorf("got %d hesitation symbols in %q; want 3", n, got)
	}
	if strings.Contains(got, "<UM>") || strings.Contains(got, "~um~") {
		t.Errorf("tag text remaining in %q", got)
	}
}

func TestEnglishExpandsAbbreviations(t *testing.T) {
	pool, backend := newScriptedPool(t, englishWords)
	p, _ := Lookup("english_cleaners2")

	got, err := p.Run(context.Background(), pool, "w", "Mr. Smith")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(backend.seen) != 1 {
		t.Fatalf("backend saw %d utterances; want 1", len(backend.seen))
	}
	if backend.seen[0] != "mister smith" {
		t.Errorf("phonemizer input = %q; want %q", backend.seen[0], "mister smith")
	}
	if got != "mˈɪstɚ smˈɪθ" {
		t.Errorf("english_cleaners2 = %q", got)
	}
}

func TestExpandAbbreviationsTable(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dr. who", "doctor who"},
		{"DR. who", "doctor who"},
		{"meet col. mustard at ft. knox", "meet colonel mustard at fort knox"},
		{"no drastic. change", "no drastic. change"},
		{"mr smith", "mr smith"}, // no period, no expansion
	}

	for _, tt := range tests {
		if got := expandAbbreviations(tt.in); got != tt.want {
			t.Errorf("expandAbbreviations(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestPolishNasalRemap(t *testing.T) {
	words := map[string]string{"wąs": "vɔ̃s"}
	pool, _ := newScriptedPool(t, words)
	p, _ := Lookup("polish_cleaners")

	got, err := p.Run(context.Background(), pool, "w", "wąs")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "vɔʷs" {
		t.Errorf("polish_cleaners = %q; want %q", got, "vɔʷs")
	}
}

func TestPolishMarkerRoundTrip(t *testing.T) {
	words := map[string]string{"~laugh~": "tˈɨlda lˈawk tˈɨlda"}
	pool, _ := newScriptedPool(t, words)
	p, _ := Lookup("polish_cleaners")

	got, err := p.Run(context.Background(), pool, "w", "<LAUGH>")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "⟨ʟᴀᴜɢʜ⟩" {
		t.Errorf("polish_cleaners = %q; want the laugh symbol", got)
	}
}

func TestMarkerCapability(t *testing.T) {
	tests := []struct {
		pipeline string
		want     bool
	}{
		{"english_cleaners2", true},
		{"polish_cleaners", true},
		{"hungarian_cleaners", false},
		{"basic_cleaners", false},
		{"transliteration_cleaners", false},
		{"ipa_simplifier", false},
	}

	for _, tt := range tests {
		p, err := Lookup(tt.pipeline)
		if err != nil {
			t.Fatal(err)
		}
		if p.SupportsMarkers() != tt.want {
			t.Errorf("%s SupportsMarkers = %v; want %v", tt.pipeline, !tt.want, tt.want)
		}
	}
}

func TestRemoveBracketsAfterPhonemize(t *testing.T) {
	words := map[string]string{"hello": "(en)hɛlˈoʊ[x]"}
	pool, _ := newScriptedPool(t, words)
	p, _ := Lookup("hungarian_cleaners")

	got, err := p.Run(context.Background(), pool, "w", "hello")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.ContainsAny(got, "[](){}") {
		t.Errorf("brackets remain in %q", got)
	}
}

func TestCollapseWhitespaceIdempotent(t *testing.T) {
	in := "a \t b\n\nc  d"
	once := CollapseWhitespace(in)
	twice := CollapseWhitespace(once)

	if once != "a b c d" {
		t.Errorf("CollapseWhitespace = %q", once)
	}
	if once != twice {
		t.Errorf("not idempotent: %q vs %q", once, twice)
	}
}

func TestRemoveBracketsIdempotent(t *testing.T) {
	in := "a[b](c){d}e"
	once := RemoveBrackets(in)
	twice := RemoveBrackets(once)

	if once != "abcde" {
		t.Errorf("RemoveBrackets = %q", once)
	}
	if once != twice {
		t.Errorf("not idempotent: %q vs %q", once, twice)
	}
}

func TestIPASimplifier(t *testing.T) {
	p, _ := Lookup("ipa_simplifier")

	got, err := p.Run(context.Background(), nil, "w", "ʧˈɐ  ʤᵻ")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "tʃə dʒɪ" {
		t.Errorf("ipa_simplifier = %q; want %q", got, "tʃə dʒɪ")
	}
}

func TestPhonemizeErrorPropagates(t *testing.T) {
	factory := func(string) (phonemizer.Backend, error) { return nil, errors.New("engine init failed") }
	pool := phonemizer.NewPool(factory, phonemizer.Languages()...)
	p, _ := Lookup("english_cleaners2")

	_, err := p.Run(context.Background(), pool, "w", "hello")
	if err == nil || !strings.Contains(err.Error(), "engine init failed") {
		t.Errorf("engine diagnostic not passed through: %v", err)
	}
}
