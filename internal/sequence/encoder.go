// Package sequence maps phoneme strings to the integer id sequences the
// acoustic model consumes, and back for diagnostics.
package sequence

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/example/go-matcha-text/internal/cleaners"
	"github.com/example/go-matcha-text/internal/phonemizer"
	"github.com/example/go-matcha-text/internal/symbols"
)

// VocabularyError reports a pipeline output character with no vocabulary
// id. It is fatal: dropping the character would desynchronize alignments
// stored against the id sequence.
type VocabularyError struct {
	Symbol   string
	Position int // rune offset in the phoneme string
}

func (e *VocabularyError) Error() string {
	return fmt.Sprintf("symbol %q at position %d is not in the vocabulary", e.Symbol, e.Position)
}

// UnknownIDError reports a decode id outside the vocabulary.
type UnknownIDError struct {
	ID int64
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("id %d is not in the vocabulary", e.ID)
}

// Result is one fully processed utterance.
type Result struct {
	Phonemes string
	IDs      []int64
}

// Encoder runs cleaner pipelines and converts their output to symbol ids.
type Encoder struct {
	vocab *symbols.Vocabulary
	pool  *phonemizer.Pool
}

// NewEncoder creates an encoder backed by the given phonemizer pool.
func NewEncoder(pool *phonemizer.Pool) *Encoder {
	return &Encoder{vocab: symbols.New(), pool: pool}
}

// Vocabulary exposes the encoder's symbol vocabulary.
func (e *Encoder) Vocabulary() *symbols.Vocabulary { return e.vocab }

// Encode runs the named pipeline over text and maps the resulting phoneme
// string to ids. workerKey must identify the calling execution context.
func (e *Encoder) Encode(ctx context.Context, text, pipelineName, workerKey string) (Result, error) {
	p, err := cleaners.Lookup(pipelineName)
	if err != nil {
		return Result{}, err
	}

	phonemes, err := p.Run(ctx, e.pool, workerKey, text)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline %s: %w", pipelineName, err)
	}

	ids, err := e.EncodePhonemes(phonemes)
	if err != nil {
		return Result{}, err
	}

	return Result{Phonemes: phonemes, IDs: ids}, nil
}

// EncodePhonemes maps a phoneme string to ids. Special vocal symbols are
// matched first (longest match) so each marker encodes as one atomic id;
// every other rune maps individually. An unknown character is a hard error.
func (e *Encoder) EncodePhonemes(phonemes string) ([]int64, error) {
	ids := make([]int64, 0, len(phonemes))
	pos := 0

	for i := 0; i < len(phonemes); {
		if sym, ok := matchSpecial(phonemes[i:]); ok {
			id, _ := e.vocab.IDOf(sym)
			ids = append(ids, id)
			i += len(sym)
			pos += utf8.RuneCountInString(sym)
			continue
		}

		r, size := utf8.DecodeRuneInString(phonemes[i:])
		id, ok := e.vocab.IDOf(string(r))
		if !ok {
			return nil, &VocabularyError{Symbol: string(r), Position: pos}
		}
		ids = append(ids, id)
		i += size
		pos++
	}

	return ids, nil
}

// Decode is the pure inverse lookup: the concatenation of the symbols for
// each id. An unknown id is a hard error.
func (e *Encoder) Decode(ids []int64) (string, error) {
	var sb strings.Builder
	for _, id := range ids {
		sym, ok := e.vocab.SymbolOf(id)
		if !ok {
			return "", &UnknownIDError{ID: id}
		}
		sb.WriteString(sym)
	}
	return sb.String(), nil
}

// Intersperse returns ids with item inserted before, between, and after
// every element, as the acoustic model expects for its pad-interleaved
// input: [item, ids[0], item, ids[1], ..., item].
func Intersperse(ids []int64, item int64) []int64 {
	out := make([]int64, len(ids)*2+1)
	for i := range out {
		out[i] = item
	}
	for i, id := range ids {
		out[i*2+1] = id
	}
	return out
}

var specials = symbols.SpecialVocals()

func matchSpecial(s string) (string, bool) {
	for _, sym := range specials {
		if strings.HasPrefix(s, sym) {
			return sym, true
		}
	}
	return "", false
}
