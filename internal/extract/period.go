package extract

import "strings"

// Period finds the service period in text and returns it as
// "DD.MM.YYYY bis DD.MM.YYYY". Patterns are tried in marker order, the
// bare von/bis form last, and the first hit wins. Dates are zero-padded
// and shorthand years repaired; an empty string means no period was found.
func (e *Extractor) Period(text string) string {
	for _, pat := range e.rules.periodPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		start, end := repairDates(m[1], m[2])
		return start + " bis " + end
	}
	return ""
}

// repairDates normalizes a start/end date pair. Two-digit years are
// expanded into this century, and a date missing its year borrows it from
// the other side of the range. A pair with no year at all keeps the
// trailing-dot form.
func repairDates(start, end string) (string, string) {
	sd, sm, sy := splitDate(start)
	ed, em, ey := splitDate(end)
	sy = expandYear(sy)
	ey = expandYear(ey)
	if sy == "" {
		sy = ey
	}
	if ey == "" {
		ey = sy
	}
	return joinDate(sd, sm, sy), joinDate(ed, em, ey)
}

// splitDate cuts "D.M.Y" into its parts. The captured dates always carry
// both dots; the year may be empty for the trailing-dot form "D.M.".
func splitDate(d string) (day, month, year string) {
	parts := strings.SplitN(d, ".", 3)
	return parts[0], parts[1], parts[2]
}

func joinDate(day, month, year string) string {
	return pad2(day) + "." + pad2(month) + "." + year
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func expandYear(y string) string {
	if len(y) == 2 {
		return "20" + y
	}
	return y
}
