package league

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases, strips diacritics, collapses whitespace, then
// resolves through the alias map so "Boston Celtics", "BOS" and "celtics"
// share one key.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = stripDiacritics(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	if canonical, ok := TeamAliases[s]; ok {
		return canonical
	}
	return s
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) { // Mn = Mark, Nonspacing (combining accents)
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TeamAliases maps full franchise names and tricodes to the short nickname
// used by the bundled sample list.
var TeamAliases = map[string]string{
	"atlanta hawks": "hawks", "atl": "hawks",
	"boston celtics": "celtics", "bos": "celtics",
	"brooklyn nets": "nets", "bkn": "nets",
	"charlotte hornets": "hornets", "cha": "hornets",
	"chicago bulls": "bulls", "chi": "bulls",
	"cleveland cavaliers": "cavaliers", "cle": "cavaliers", "cavs": "cavaliers",
	"dallas mavericks": "mavericks", "dal": "mavericks", "mavs": "mavericks",
	"denver nuggets": "nuggets", "den": "nuggets",
	"detroit pistons": "pistons", "det": "pistons",
	"golden state warriors": "warriors", "gsw": "warriors",
	"houston rockets": "rockets", "hou": "rockets",
	"indiana pacers": "pacers", "ind": "pacers",
	"la clippers": "clippers", "los angeles clippers": "clippers", "lac": "clippers",
	"los angeles lakers": "lakers", "la lakers": "lakers", "lal": "lakers",
	"memphis grizzlies": "grizzlies", "mem": "grizzlies",
	"miami heat": "heat", "mia": "heat",
	"milwaukee bucks": "bucks", "mil": "bucks",
	"minnesota timberwolves": "timberwolves", "min": "timberwolves", "wolves": "timberwolves",
	"new orleans pelicans": "pelicans", "nop": "pelicans",
	"new york knicks": "knicks", "nyk": "knicks",
	"oklahoma city thunder": "thunder", "okc": "thunder",
	"orlando magic": "magic", "orl": "magic",
	"philadelphia 76ers": "76ers", "phi": "76ers", "sixers": "76ers",
	"phoenix suns": "suns", "phx": "suns",
	"portland trail blazers": "trail blazers", "por": "trail blazers", "blazers": "trail blazers",
	"sacramento kings": "kings", "sac": "kings",
	"san antonio spurs": "spurs", "sas": "spurs",
	"toronto raptors": "raptors", "tor": "raptors",
	"utah jazz": "jazz", "uta": "jazz",
	"washington wizards": "wizards", "was": "wizards",
}
