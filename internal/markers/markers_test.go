package markers

import (
	"strings"
	"testing"

	"github.com/example/go-matcha-text/internal/phonemizer"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEncodeReplacesAllTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single tag",
			in:   "I was <LAUGH> there",
			want: "I was  ~LAUGH~  there",
		},
		{
			name: "repeated tag",
			in:   "<UM> a <UM> b <UM>",
			want: " ~UM~  a  ~UM~  b  ~UM~ ",
		},
		{
			name: "mixed tags",
			in:   "<SIGH>ok<GASP>",
			want: " ~SIGH~ ok ~GASP~ ",
		},
		{
			name: "case sensitive",
			in:   "<laugh> stays",
			want: "<laugh> stays",
		},
		{
			name: "no tags",
			in:   "plain text",
			want: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.in); got != tt.want {
				t.Errorf("Encode(%q) = %q; want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeEnglish(t *testing.T) {
	in := "aɪ wʌz tˈɪldə lˈæf tˈɪldə ðɛr"
	got := Decode(in, phonemizer.LangEnglishUS)
	want := "aɪ wʌz ⟨ʟᴀᴜɢʜ⟩ ðɛr"

	if got != want {
		t.Errorf("Decode = %q; want %q", got, want)
	}
}

func TestDecodePolish(t *testing.T) {
	in := "tˈɨlda lˈawk tˈɨlda bˈardzɔ tˈɨlda ˈum tˈɨlda"
	got := Decode(in, phonemizer.LangPolish)
	want := "⟨ʟᴀᴜɢʜ⟩ bˈardzɔ ⟨ᴜᴍ⟩"

	if got != want {
		t.Errorf("Decode = %q; want %q", got, want)
	}
}

func TestDecodeAllMarkersRoundTrip(t *testing.T) {
	for _, lang := range []string{phonemizer.LangEnglishUS, phonemizer.LangPolish} {
		for _, r := range restorations[lang] {
			got := Decode("a "+r.Phonemes+" b", lang)
			want := "a " + r.Symbol + " b"
			if got != want {
				t.Errorf("Decode(%s, %q) = %q; want %q", lang, r.Phonemes, got, want)
			}
		}
	}
}

func TestDecodeMultipleOccurrences(t *testing.T) {
	in := strings.Repeat("tˈɪldə ˈʌm tˈɪldə x ", 3)
	got := Decode(in, phonemizer.LangEnglishUS)

	if n := strings.Count(got, "⟨ᴜᴍ⟩"); n != 3 {
		t.Errorf("restored %d hesitation symbols; want 3 (output %q)", n, got)
	}
	if strings.Contains(got, "tˈɪldə") {
		t.Errorf("placeholder remnants left in %q", got)
	}
}

func TestDecodeMissLeavesTextAndCounts(t *testing.T) {
	before := testutil.ToFloat64(restorationMisses.WithLabelValues(phonemizer.LangEnglishUS))

	// A drifted rendering: extra stress mark that no table entry matches.
	in := "tˈɪldə lˈæːf tˈɪldə"
	got := Decode(in, phonemizer.LangEnglishUS)

	if got != in {
		t.Errorf("Decode altered an unmatched rendering: %q -> %q", in, got)
	}

	after := testutil.ToFloat64(restorationMisses.WithLabelValues(phonemizer.LangEnglishUS))
	if after != before+1 {
		t.Errorf("restoration miss counter = %v; want %v", after, before+1)
	}
}

func TestDecodeUnknownLanguageIsNoop(t *testing.T) {
	in := "tˈɪldə lˈæf tˈɪldə"
	if got := Decode(in, phonemizer.LangHungarian); got != in {
		t.Errorf("Decode for language without table altered text: %q", got)
	}
}

func TestSupported(t *testing.T) {
	if !Supported(phonemizer.LangEnglishUS) || !Supported(phonemizer.LangPolish) {
		t.Error("expected en-us and pl restoration tables")
	}
	if Supported(phonemizer.LangHungarian) {
		t.Error("hu has no restoration table")
	}
}

func TestEveryTagHasRestorationEntries(t *testing.T) {
	for _, tag := range Tags() {
		symbol, ok := SymbolFor(tag)
		if !ok {
			t.Fatalf("no symbol for tag %s", tag)
		}
		for _, lang := range []string{phonemizer.LangEnglishUS, phonemizer.LangPolish} {
			found := false
			for _, r := range restorations[lang] {
				if r.Symbol == symbol {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("tag %s has no %s restoration entry", tag, lang)
			}
		}
	}
}
