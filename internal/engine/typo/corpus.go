package typo

// misspellings maps a known-bad domain spelling directly to its
// canonical form. Exact hits score 95.
var misspellings = map[string]string{
	"gmial.com":   "gmail.com",
	"gmai.com":    "gmail.com",
	"gmail.co":    "gmail.com",
	"gmaill.com":  "gmail.com",
	"gnail.com":   "gmail.com",
	"gmal.com":    "gmail.com",
	"yahooo.com":  "yahoo.com",
	"yaho.com":    "yahoo.com",
	"yahoo.co":    "yahoo.com",
	"hotmial.com": "hotmail.com",
	"hotmal.com":  "hotmail.com",
	"hotmail.co":  "hotmail.com",
	"outlok.com":  "outlook.com",
	"outloo.com":  "outlook.com",
	"iclould.com": "icloud.com",
	"icoud.com":   "icloud.com",
}

// tldTypos maps a known-bad TLD suffix to its canonical replacement.
// A hit here scores 90 (a correct second-level name, wrong TLD).
var tldTypos = map[string]string{
	".con":  ".com",
	".cmo":  ".com",
	".ocm":  ".com",
	".comm": ".com",
	".ney":  ".net",
}

// Popular holds the consumer domain whitelist used both as the target
// set for bounded edit-distance search and as the non-reflexivity guard:
// a domain already on this list is never "corrected" to a neighbor.
var Popular = []string{
	"gmail.com",
	"yahoo.com",
	"hotmail.com",
	"outlook.com",
	"icloud.com",
	"aol.com",
	"protonmail.com",
	"live.com",
	"msn.com",
	"comcast.net",
}

func isPopular(domain string) bool {
	for _, p := range Popular {
		if p == domain {
			return true
		}
	}
	return false
}
