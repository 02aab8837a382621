package cleaners

import "regexp"

// abbreviationTable pairs each abbreviation (matched as a whole word
// followed by a period, case-insensitively) with its spoken expansion.
var abbreviationTable = [][2]string{
	{"mrs", "misess"},
	{"mr", "mister"},
	{"dr", "doctor"},
	{"st", "saint"},
	{"co", "company"},
	{"jr", "junior"},
	{"maj", "major"},
	{"gen", "general"},
	{"drs", "doctors"},
	{"rev", "reverend"},
	{"lt", "lieutenant"},
	{"hon", "honorable"},
	{"sgt", "sergeant"},
	{"capt", "captain"},
	{"esq", "esquire"},
	{"ltd", "limited"},
	{"col", "colonel"},
	{"ft", "fort"},
}

var abbreviations = func() []struct {
	re   *regexp.Regexp
	repl string
} {
	out := make([]struct {
		re   *regexp.Regexp
		repl string
	}, len(abbreviationTable))
	for i, pair := range abbreviationTable {
		out[i].re = regexp.MustCompile(`(?i)\b` + pair[0] + `\.`)
		out[i].repl = pair[1]
	}
	return out
}()

func expandAbbreviations(text string) string {
	for _, a := range abbreviations {
		text = a.re.ReplaceAllString(text, a.repl)
	}
	return text
}
