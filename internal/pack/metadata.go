package pack

import (
	"regexp"
	"strings"
)

// Magic comment markers. A script declares the files it needs with
// comment lines like:
//
//	# required_inputs: names.csv, config.json
//	# derived_inputs: cleaned.csv
//
// The marker word is matched case-insensitively and only the first
// occurrence of each marker counts.
var (
	requiredInputsRe = regexp.MustCompile(`(?i)#\s*required_inputs:\s*(.*)`)
	derivedInputsRe  = regexp.MustCompile(`(?i)#\s*derived_inputs:\s*(.*)`)
)

// ParseMarkers extracts the required and derived input lists from a
// script's text. Absent markers and empty values yield empty (non-nil)
// lists so the serialized record always carries [] rather than null.
// Filenames are passed through verbatim; nothing checks they exist.
func ParseMarkers(content string) (required, derived []string) {
	required = matchList(requiredInputsRe, content)
	derived = matchList(derivedInputsRe, content)
	return required, derived
}

func matchList(re *regexp.Regexp, content string) []string {
	m := re.FindStringSubmatch(content)
	if m == nil {
		return []string{}
	}
	return splitList(m[1])
}

// splitList splits a comma-separated value, trims each token, and drops
// empties.
func splitList(raw string) []string {
	out := []string{}
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
