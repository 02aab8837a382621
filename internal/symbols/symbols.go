// Package symbols defines the closed symbol vocabulary shared between the
// text frontend and the acoustic model. Symbol ids index the model's
// embedding table, so construction order is fixed and must never change.
package symbols

import "fmt"

const (
	// Pad is the padding symbol. Its id is always PadID.
	Pad = "_"
	// PadID is the id of the padding symbol.
	PadID int64 = 0
	// SpaceID is the id of the space character. Other components test for
	// it explicitly, so it is pinned here and asserted at construction.
	SpaceID int64 = 16
)

// Source sets, appended in fixed order. The IPA set repeats the apostrophe;
// duplicates are skipped during construction so each symbol occurs once.
const (
	punctuation = `;:,.!?¡¿—…"«»“” ⟨⟩`
	letters     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	lettersIPA  = "ɑɐɒæɓʙβɔɕçɗɖðʤəɘɚɛɜɝɞɟʄɡɠɢʛɦɧħɥʜɨɪʝɭɬɫɮʟɱɯɰŋɳɲɴøɵɸθœɶʘɹɺɾɻʀʁɽʂʃʈʧʉʊʋⱱʌɣɤʍχʎʏʑʐʒʔʡʕʢǀǁǂǃˈˌːˑʼʴʰʱʲʷˠˤ˞↓↑→↗↘'̩'ᵻᴀᴄᴇᴋᴍᴏᴘᴜᴡꜰꜱ"
)

// specialVocals are the non-phonemic marker symbols. Each is a multi-rune
// string that the sequence encoder treats as one atomic unit.
var specialVocals = []string{
	"⟨ᴜʜ⟩",
	"⟨ᴜᴍ⟩",
	"⟨ʟᴀᴜɢʜ⟩",
	"⟨ɢɪɢɢʟᴇ⟩",
	"⟨ᴄʜᴜᴄᴋʟᴇ⟩",
	"⟨ꜱɪɢʜ⟩",
	"⟨ᴄᴏᴜɢʜ⟩",
	"⟨ꜱɴɪꜰꜰʟᴇ⟩",
	"⟨ɢʀᴏᴀɴ⟩",
	"⟨ʏᴀᴡɴ⟩",
	"⟨ɢᴀꜱᴘ⟩",
}

// SpecialVocals returns the marker output symbols in vocabulary order.
func SpecialVocals() []string {
	return append([]string(nil), specialVocals...)
}

// Vocabulary is the ordered symbol set with bidirectional id lookup.
// It is immutable after construction and safe for concurrent use.
type Vocabulary struct {
	symbols []string
	ids     map[string]int64
}

// New builds the vocabulary. Construction is pure and deterministic:
// pad, punctuation, Latin letters, IPA characters, special-vocal symbols,
// in that order, with already-seen symbols skipped.
func New() *Vocabulary {
	v := &Vocabulary{ids: make(map[string]int64)}

	v.add(Pad)
	for _, r := range punctuation {
		v.add(string(r))
	}
	for _, r := range letters {
		v.add(string(r))
	}
	for _, r := range lettersIPA {
		v.add(string(r))
	}
	for _, s := range specialVocals {
		v.add(s)
	}

	if len(v.ids) != len(v.symbols) {
		panic(fmt.Sprintf("symbols: vocabulary has duplicates: %d symbols, %d ids", len(v.symbols), len(v.ids)))
	}
	if v.symbols[PadID] != Pad {
		panic(fmt.Sprintf("symbols: pad symbol is %q at id %d, want %q", v.symbols[PadID], PadID, Pad))
	}
	if v.symbols[SpaceID] != " " {
		panic(fmt.Sprintf("symbols: id %d is %q, want space", SpaceID, v.symbols[SpaceID]))
	}

	return v
}

func (v *Vocabulary) add(s string) {
	if _, seen := v.ids[s]; seen {
		return
	}
	v.ids[s] = int64(len(v.symbols))
	v.symbols = append(v.symbols, s)
}

// IDOf returns the id of the given symbol.
func (v *Vocabulary) IDOf(symbol string) (int64, bool) {
	id, ok := v.ids[symbol]
	return id, ok
}

// SymbolOf returns the symbol with the given id.
func (v *Vocabulary) SymbolOf(id int64) (string, bool) {
	if id < 0 || id >= int64(len(v.symbols)) {
		return "", false
	}
	return v.symbols[id], true
}

// Len returns the number of symbols.
func (v *Vocabulary) Len() int { return len(v.symbols) }

// Symbols returns a copy of the ordered symbol list.
func (v *Vocabulary) Symbols() []string {
	return append([]string(nil), v.symbols...)
}
