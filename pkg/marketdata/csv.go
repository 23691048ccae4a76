package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/streaklab/streakback/internal/types"
	"github.com/streaklab/streakback/pkg/errors"
)

// csvBar is the on-disk row shape: an ISO date and a closing price.
type csvBar struct {
	Date  string  `csv:"date"`
	Close float64 `csv:"close"`
}

// CSVProvider serves daily bars from per-symbol CSV files in a directory,
// for offline runs and tests. A symbol SYM is read from <dir>/SYM.csv.
type CSVProvider struct {
	dir string
}

// NewCSVProvider creates a provider rooted at the given directory.
func NewCSVProvider(dir string) (*CSVProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "cannot open data directory %s", dir)
	}

	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "%s is not a directory", dir)
	}

	return &CSVProvider{dir: dir}, nil
}

// FetchDailyBars implements Provider.
func (p *CSVProvider) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]types.PriceBar, error) {
	if symbol == "" {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "symbol must not be empty")
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	path := filepath.Join(p.dir, fmt.Sprintf("%s.csv", strings.ToUpper(symbol)))

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeSymbolNotFound, err, "no data file for %s", symbol)
	}
	defer file.Close()

	var rows []csvBar
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "failed to parse %s", path)
	}

	startDay := types.Day(start)
	endDay := types.Day(end)

	var bars []types.PriceBar

	for _, row := range rows {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "bad date %q in %s", row.Date, path)
		}

		if date.Before(startDay) || date.After(endDay) {
			continue
		}

		bars = append(bars, types.PriceBar{Date: date, Close: row.Close})
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptySeries, "no bars for %s between %s and %s",
			symbol, startDay.Format("2006-01-02"), endDay.Format("2006-01-02"))
	}

	return bars, nil
}
