package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belegwerk/belegscan/internal/model"
	"github.com/belegwerk/belegscan/internal/store"
)

func TestFormatRunsList(t *testing.T) {
	started := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	runs := []model.ScanRun{
		{
			ID:         "4f2d9c6a-1111-2222-3333-444455556666",
			InputDir:   "./receipts",
			Status:     model.RunStatusComplete,
			Files:      12,
			Amounts:    11,
			Periods:    9,
			Failures:   1,
			StartedAt:  started,
			FinishedAt: started.Add(3 * time.Second),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "4f2d9c6a")
	assert.NotContains(t, out, "4f2d9c6a-1111", "listing should show the short ID")
	assert.Contains(t, out, "./receipts")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "3s")
}

func TestFormatRunStats(t *testing.T) {
	var buf bytes.Buffer
	formatRunStats(&buf, &store.RunStats{
		Runs:     3,
		Files:    40,
		Amounts:  36,
		Periods:  30,
		Failures: 2,
		LastRun:  time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
	})

	out := buf.String()
	assert.Contains(t, out, "Runs:")
	assert.Contains(t, out, "40")
	assert.Contains(t, out, "Unreadable files:")
	assert.Contains(t, out, "Last run:")
}

func TestFormatRunStats_NoRuns(t *testing.T) {
	var buf bytes.Buffer
	formatRunStats(&buf, &store.RunStats{})
	assert.NotContains(t, buf.String(), "Last run:")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "4f2d9c6a", shortID("4f2d9c6a-1111-2222-3333-444455556666"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestLoadRules(t *testing.T) {
	rules, err := loadRules("")
	require.NoError(t, err)
	require.NotNil(t, rules)
	assert.Equal(t, "Summe", rules.Spec().Amount.FallbackKeyword)

	_, err = loadRules("does-not-exist.yaml")
	assert.Error(t, err)
}
