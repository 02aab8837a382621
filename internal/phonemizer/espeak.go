package phonemizer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// punctuationMarks are preserved across phonemization. espeak drops them,
// so the utterance is split on runs of these characters, the text chunks
// are phonemized, and the punctuation is re-interleaved afterwards.
const punctuationMarks = `;:,.!?¡¿—…"«»“”`

// langSwitchRe matches the flag espeak inserts when it switches language
// mid-utterance, e.g. "(en)" or "(pt-br)". The flags are suppressed so they
// never leak into the phoneme stream.
var langSwitchRe = regexp.MustCompile(`\([a-z]{2,3}(?:-[a-zA-Z]{2,})?\)`)

// EspeakBackend shells out to the espeak-ng binary, one invocation per
// utterance. The subprocess boundary is what keeps engine state from
// crossing worker contexts.
type EspeakBackend struct {
	executable string
	voice      string
}

// NewEspeakBackend creates a backend for one language code (espeak voice).
// An empty executable defaults to "espeak-ng" on PATH.
func NewEspeakBackend(executable, language string) *EspeakBackend {
	if executable == "" {
		executable = "espeak-ng"
	}
	return &EspeakBackend{executable: executable, voice: language}
}

// Phonemize converts text to an IPA phoneme string with stress marks,
// preserved punctuation, and language-switch flags removed.
func (b *EspeakBackend) Phonemize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	segs := splitPunctuation(text)

	// One espeak run phonemizes all text chunks, newline-separated.
	var chunks []string
	for _, seg := range segs {
		if !seg.punct && strings.TrimSpace(seg.text) != "" {
			chunks = append(chunks, strings.ReplaceAll(strings.TrimSpace(seg.text), "\n", " "))
		}
	}

	var phonemized []string
	if len(chunks) > 0 {
		out, err := b.run(ctx, strings.Join(chunks, "\n"))
		if err != nil {
			return "", err
		}
		for _, line := range strings.Split(out, "\n") {
			line = strings.TrimSpace(langSwitchRe.ReplaceAllString(line, ""))
			if line != "" {
				phonemized = append(phonemized, line)
			}
		}
		if len(phonemized) != len(chunks) {
			return "", fmt.Errorf("espeak-ng: got %d phoneme lines for %d chunks", len(phonemized), len(chunks))
		}
	}

	// Re-interleave punctuation, keeping each chunk's surrounding spacing.
	var sb strings.Builder
	next := 0
	for _, seg := range segs {
		if seg.punct {
			sb.WriteString(seg.text)
			continue
		}
		trimmed := strings.TrimSpace(seg.text)
		if trimmed == "" {
			sb.WriteString(seg.text)
			continue
		}
		if len(trimmed) < len(strings.TrimRight(seg.text, " \t\n\r")) {
			sb.WriteString(" ")
		}
		sb.WriteString(phonemized[next])
		next++
		if strings.TrimRight(seg.text, " \t\n\r") != seg.text {
			sb.WriteString(" ")
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

// Close is a no-op: the subprocess lives only for the duration of each
// call, so there is no persistent handle to release.
func (b *EspeakBackend) Close() error { return nil }

func (b *EspeakBackend) run(ctx context.Context, input string) (string, error) {
	cmd := exec.CommandContext(ctx, b.executable, "-q", "--ipa", "-v", b.voice, "--stdin")
	cmd.Stdin = strings.NewReader(input)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("espeak-ng: %w: %s", err, msg)
		}
		return "", fmt.Errorf("espeak-ng: %w", err)
	}

	return out.String(), nil
}

type segment struct {
	punct bool
	text  string
}

// splitPunctuation splits text into alternating text and punctuation-run
// segments whose concatenation reproduces the input exactly.
func splitPunctuation(s string) []segment {
	var segs []segment
	var current strings.Builder
	inPunct := false

	flush := func() {
		if current.Len() > 0 {
			segs = append(segs, segment{punct: inPunct, text: current.String()})
			current.Reset()
		}
	}

	for _, r := range s {
		isPunct := strings.ContainsRune(punctuationMarks, r)
		if current.Len() > 0 && isPunct != inPunct {
			flush()
		}
		inPunct = isPunct
		current.WriteRune(r)
	}
	flush()

	return segs
}
