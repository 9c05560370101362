package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult_Failed(t *testing.T) {
	assert.False(t, Result{FileName: "a.pdf"}.Failed())
	assert.True(t, Result{FileName: "b.pdf", Err: "open failed"}.Failed())
}

func TestSummarize(t *testing.T) {
	v := 119.0
	results := []Result{
		{FileName: "a.pdf", RawAmount: "119,00", NormalizedAmount: &v, Period: "01.03.2024 bis 31.03.2024"},
		{FileName: "b.pdf", RawAmount: "56,78"}, // no period found
		{FileName: "c.pdf"},                     // nothing found, still not a failure
		{FileName: "d.pdf", Err: "broken xref"},
	}

	amounts, periods, failures := Summarize(results)
	assert.Equal(t, 2, amounts)
	assert.Equal(t, 1, periods)
	assert.Equal(t, 1, failures)
}

func TestSummarize_Empty(t *testing.T) {
	amounts, periods, failures := Summarize(nil)
	assert.Zero(t, amounts)
	assert.Zero(t, periods)
	assert.Zero(t, failures)
}
