package marketdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/streaklab/streakback/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, symbol, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, symbol+".csv"), []byte(content), 0644))
}

func TestCSVProviderReadsBars(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "AAPL", "date,close\n2024-01-02,100.5\n2024-01-03,101.25\n2024-01-04,99\n")

	provider, err := NewCSVProvider(dir)
	require.NoError(t, err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	bars, err := provider.FetchDailyBars(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 100.5, bars[0].Close)
	assert.Equal(t, 99.0, bars[2].Close)
}

func TestCSVProviderFiltersRange(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "AAPL", "date,close\n2024-01-02,100\n2024-02-02,110\n2024-03-02,120\n")

	provider, err := NewCSVProvider(dir)
	require.NoError(t, err)

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)

	bars, err := provider.FetchDailyBars(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 110.0, bars[0].Close)
}

func TestCSVProviderLowercaseSymbol(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "AAPL", "date,close\n2024-01-02,100\n")

	provider, err := NewCSVProvider(dir)
	require.NoError(t, err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	bars, err := provider.FetchDailyBars(context.Background(), "aapl", start, end)
	require.NoError(t, err)
	assert.Len(t, bars, 1)
}

func TestCSVProviderUnknownSymbol(t *testing.T) {
	provider, err := NewCSVProvider(t.TempDir())
	require.NoError(t, err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	_, err = provider.FetchDailyBars(context.Background(), "NOPE", start, end)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSymbolNotFound))
}

func TestCSVProviderEmptyWindow(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "AAPL", "date,close\n2024-01-02,100\n")

	provider, err := NewCSVProvider(dir)
	require.NoError(t, err)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)

	_, err = provider.FetchDailyBars(context.Background(), "AAPL", start, end)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptySeries))
}

func TestCSVProviderBadDate(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "AAPL", "date,close\nnot-a-date,100\n")

	provider, err := NewCSVProvider(dir)
	require.NoError(t, err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	_, err = provider.FetchDailyBars(context.Background(), "AAPL", start, end)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataUnavailable))
}

func TestNewCSVProviderMissingDir(t *testing.T) {
	_, err := NewCSVProvider(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataUnavailable))
}
