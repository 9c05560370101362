package extract

import (
	"strconv"
	"strings"
)

// Extractor applies compiled rules to the plain text of a document.
type Extractor struct {
	rules *Rules
}

// New returns an Extractor for the given rules. A nil rules falls back to
// the built-in defaults.
func New(rules *Rules) *Extractor {
	if rules == nil {
		rules = Default()
	}
	return &Extractor{rules: rules}
}

// Amount finds the invoice total in text. It returns the raw token as it
// appeared in the document and, when the token parses, its numeric value.
// Both searches failing yields ("", nil); a token that will not parse
// yields (raw, nil) so the caller can still report what was seen.
func (e *Extractor) Amount(text string) (string, *float64) {
	raw := e.rawAmount(text)
	if raw == "" {
		return "", nil
	}
	v, ok := NormalizeAmount(raw)
	if !ok {
		return raw, nil
	}
	return raw, &v
}

func (e *Extractor) rawAmount(text string) string {
	r := e.rules

	// Primary: first amount token in the window after the gross-total marker.
	if loc := r.amountMarker.FindStringIndex(text); loc != nil {
		end := loc[1] + r.windowChars
		if end > len(text) {
			end = len(text)
		}
		if tok := r.amountToken.FindString(text[loc[1]:end]); tok != "" {
			return tok
		}
	}

	// Fallback: the last token on the last keyword line that carries one.
	// Later lines tend to be grand totals rather than subtotals.
	var tok string
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(strings.ToLower(line), r.fallbackKey) {
			continue
		}
		if m := r.amountToken.FindAllString(line, -1); len(m) > 0 {
			tok = m[len(m)-1]
		}
	}
	return tok
}

// NormalizeAmount parses a European-formatted amount string. It accepts
// both "1.234,56" and "1,234.56" digit groupings as well as thin-space
// grouping, and reports whether the result is a valid number.
func NormalizeAmount(raw string) (float64, bool) {
	s := strings.NewReplacer(" ", "", " ", "", "€", "", "EUR", "").Replace(raw)
	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			// German style: dots group thousands, comma is the decimal mark.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-comma-1 == 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
