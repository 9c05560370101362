package model

// Result is the extraction outcome for a single PDF document.
// Absent fields stay at their zero value: an empty RawAmount/Period means
// the heuristics found nothing, a nil NormalizedAmount means the raw string
// did not parse. Neither is an error condition.
type Result struct {
	FileName         string   `json:"file_name"`
	RawAmount        string   `json:"raw_amount,omitempty"`
	NormalizedAmount *float64 `json:"normalized_amount,omitempty"`
	Period           string   `json:"period,omitempty"`

	// Err marks documents whose text could not be extracted at all.
	// It is recorded in run history and logs, never in the output table.
	Err string `json:"error,omitempty"`
}

// Failed reports whether text extraction failed for this document.
func (r Result) Failed() bool {
	return r.Err != ""
}

// Summarize counts extraction outcomes over a result set.
func Summarize(results []Result) (amounts, periods, failures int) {
	for _, r := range results {
		if r.RawAmount != "" {
			amounts++
		}
		if r.Period != "" {
			periods++
		}
		if r.Failed() {
			failures++
		}
	}
	return amounts, periods, failures
}
