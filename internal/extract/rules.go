package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// datePattern matches DD.MM.YYYY, DD.MM.YY, and the year-less DD.MM. form.
// Day and month may be one or two digits. The 4-digit alternative comes
// first so a full year is never truncated to its century.
const datePattern = `\d{1,2}\.\d{1,2}\.(?:\d{4}|\d{2})?`

// Spec is the serializable form of the extraction rules. It is what a
// rules override file contains; zero fields fall back to the defaults.
type Spec struct {
	Amount AmountSpec `yaml:"amount"`
	Period PeriodSpec `yaml:"period"`
}

// AmountSpec configures the total-amount heuristics.
type AmountSpec struct {
	// Marker anchors the primary search. Matched case-insensitively.
	Marker string `yaml:"marker"`
	// Token matches a single European-format monetary amount.
	Token string `yaml:"token"`
	// FallbackKeyword selects the lines scanned when the marker yields nothing.
	FallbackKeyword string `yaml:"fallback_keyword"`
	// WindowChars bounds the scan after the marker.
	WindowChars int `yaml:"window_chars"`
}

// PeriodSpec configures the service-period heuristics.
type PeriodSpec struct {
	// Markers are tried in order; each must be followed by a date range
	// within MarkerGapChars non-digit characters. A bare
	// "von <date> bis <date>" search always runs last.
	Markers        []string `yaml:"markers"`
	MarkerGapChars int      `yaml:"marker_gap_chars"`
}

// DefaultSpec returns the built-in rules for German invoices.
func DefaultSpec() Spec {
	return Spec{
		Amount: AmountSpec{
			// Tolerates the line-wrapped compound "Bruttorechnungs-betrag".
			Marker:          `bruttorechnungs\s*-?\s*betrag`,
			Token:           `\d{1,3}(?:[.\s]\d{3})*(?:[.,]\d{2})|\d+[.,]\d{2}`,
			FallbackKeyword: "Summe",
			WindowChars:     1500,
		},
		Period: PeriodSpec{
			Markers: []string{
				`(?:leistungs|abrechnungs)?\s*zeitraum`,
				`f[üu]r\s+den\s+zeitraum`,
			},
			MarkerGapChars: 64,
		},
	}
}

// Rules holds the compiled extraction patterns. A Rules value is immutable
// after Compile and safe for concurrent use.
type Rules struct {
	spec Spec

	amountMarker *regexp.Regexp
	amountToken  *regexp.Regexp
	fallbackKey  string // lowercased
	windowChars  int

	// periodPatterns are tried in order; each captures the two dates of
	// the range. The last entry is the bare von/bis pattern.
	periodPatterns []*regexp.Regexp
}

// Compile validates a Spec and builds the matchers. Zero fields are filled
// from DefaultSpec before compiling.
func Compile(spec Spec) (*Rules, error) {
	def := DefaultSpec()
	if spec.Amount.Marker == "" {
		spec.Amount.Marker = def.Amount.Marker
	}
	if spec.Amount.Token == "" {
		spec.Amount.Token = def.Amount.Token
	}
	if spec.Amount.FallbackKeyword == "" {
		spec.Amount.FallbackKeyword = def.Amount.FallbackKeyword
	}
	if spec.Amount.WindowChars <= 0 {
		spec.Amount.WindowChars = def.Amount.WindowChars
	}
	if len(spec.Period.Markers) == 0 {
		spec.Period.Markers = def.Period.Markers
	}
	if spec.Period.MarkerGapChars <= 0 {
		spec.Period.MarkerGapChars = def.Period.MarkerGapChars
	}

	marker, err := regexp.Compile(`(?i)` + spec.Amount.Marker)
	if err != nil {
		return nil, eris.Wrap(err, "rules: compile amount marker")
	}
	token, err := regexp.Compile(spec.Amount.Token)
	if err != nil {
		return nil, eris.Wrap(err, "rules: compile amount token")
	}

	datePair := fmt.Sprintf(`(%s)\s*(?:-|–|bis)\s*(%s)`, datePattern, datePattern)
	gap := fmt.Sprintf(`[^0-9]{0,%d}`, spec.Period.MarkerGapChars)

	var periods []*regexp.Regexp
	for _, m := range spec.Period.Markers {
		p, err := regexp.Compile(`(?i)` + m + gap + datePair)
		if err != nil {
			return nil, eris.Wrapf(err, "rules: compile period marker %q", m)
		}
		periods = append(periods, p)
	}
	periods = append(periods, regexp.MustCompile(`(?i)\bvon\b\s*`+datePair))

	return &Rules{
		spec:           spec,
		amountMarker:   marker,
		amountToken:    token,
		fallbackKey:    strings.ToLower(spec.Amount.FallbackKeyword),
		windowChars:    spec.Amount.WindowChars,
		periodPatterns: periods,
	}, nil
}

// LoadFile reads a rules override file (YAML) and compiles it.
func LoadFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: read %s", path)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, eris.Wrapf(err, "rules: parse %s", path)
	}
	return Compile(spec)
}

// Default returns the compiled built-in rules.
func Default() *Rules {
	r, err := Compile(DefaultSpec())
	if err != nil {
		panic(err) // the built-in spec always compiles
	}
	return r
}

// Spec returns the source spec these rules were compiled from, with
// defaults filled in.
func (r *Rules) Spec() Spec {
	return r.spec
}
