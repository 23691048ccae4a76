package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	engine "github.com/streaklab/streakback/internal/backtest/engine/engine_v1"
	"github.com/streaklab/streakback/pkg/errors"
)

type errorResponse struct {
	Error string           `json:"error"`
	Code  errors.ErrorCode `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleAnalyze runs one backtest from form parameters and returns the full
// report as JSON. The form fields mirror the browser form this service
// fronts: initial_investment, consecutive_days, stock_symbol, and either
// shares_per_trade (fixed sizing) or small_shares/large_shares with an
// optional movement_threshold_pct (scaled sizing). start_date and end_date
// are optional ISO dates.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	config, err := configFromForm(r)
	if err != nil {
		s.writeError(w, err)

		return
	}

	backtester, err := engine.NewBacktestEngineV1FromConfig(config)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if err := backtester.SetDataProvider(s.provider); err != nil {
		s.writeError(w, err)

		return
	}

	report, err := backtester.Run(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(report); err != nil {
		s.log.Error("failed to encode report", zap.Error(err))
	}
}

func configFromForm(r *http.Request) (engine.BacktestConfig, error) {
	if err := r.ParseForm(); err != nil {
		return engine.BacktestConfig{}, errors.Wrap(errors.ErrCodeInvalidParameter, "malformed form body", err)
	}

	investment, err := parseFloatField(r, "initial_investment")
	if err != nil {
		return engine.BacktestConfig{}, err
	}

	days, err := parseIntField(r, "consecutive_days")
	if err != nil {
		return engine.BacktestConfig{}, err
	}

	symbol := r.FormValue("stock_symbol")
	if symbol == "" {
		return engine.BacktestConfig{}, errors.New(errors.ErrCodeInvalidParameter, "stock_symbol is required")
	}

	config := engine.BacktestConfig{
		Symbol:            symbol,
		BenchmarkSymbol:   r.FormValue("benchmark_symbol"),
		InitialInvestment: investment,
		ConsecutiveDays:   int(days),
	}

	if r.FormValue("small_shares") != "" || r.FormValue("large_shares") != "" {
		small, err := parseIntField(r, "small_shares")
		if err != nil {
			return engine.BacktestConfig{}, err
		}

		large, err := parseIntField(r, "large_shares")
		if err != nil {
			return engine.BacktestConfig{}, err
		}

		var threshold float64

		if r.FormValue("movement_threshold_pct") != "" {
			threshold, err = parseFloatField(r, "movement_threshold_pct")
			if err != nil {
				return engine.BacktestConfig{}, err
			}
		}

		config.TradeSize = engine.TradeSizeConfig{
			Policy:               engine.PolicyKindScaled,
			SmallShares:          small,
			LargeShares:          large,
			MovementThresholdPct: threshold,
		}
	} else {
		shares, err := parseIntField(r, "shares_per_trade")
		if err != nil {
			return engine.BacktestConfig{}, err
		}

		config.TradeSize = engine.TradeSizeConfig{
			Policy: engine.PolicyKindFixed,
			Shares: shares,
		}
	}

	start, err := parseDateField(r, "start_date")
	if err != nil {
		return engine.BacktestConfig{}, err
	}

	end, err := parseDateField(r, "end_date")
	if err != nil {
		return engine.BacktestConfig{}, err
	}

	config.StartTime = start
	config.EndTime = end

	return config, nil
}

func parseFloatField(r *http.Request, name string) (float64, error) {
	value, err := strconv.ParseFloat(r.FormValue(name), 64)
	if err != nil {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "%s must be a number", name)
	}

	return value, nil
}

func parseIntField(r *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(r.FormValue(name), 10, 64)
	if err != nil {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "%s must be an integer", name)
	}

	return value, nil
}

func parseDateField(r *http.Request, name string) (optional.Option[time.Time], error) {
	raw := r.FormValue(name)
	if raw == "" {
		return optional.None[time.Time](), nil
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return optional.None[time.Time](), errors.Newf(errors.ErrCodeInvalidParameter, "%s must be a YYYY-MM-DD date", name)
	}

	return optional.Some(date), nil
}

// writeError maps typed error kinds onto HTTP status codes: configuration
// problems are the client's fault, missing data is upstream, anything else
// is ours.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.IsConfigError(err) || errors.HasCode(err, errors.ErrCodeInvalidParameter):
		status = http.StatusBadRequest
	case errors.HasCode(err, errors.ErrCodeSymbolNotFound):
		status = http.StatusNotFound
	case errors.IsDataError(err):
		status = http.StatusBadGateway
	}

	s.log.Warn("request failed", zap.Int("status", status), zap.Error(err))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error(), Code: errors.GetCode(err)})
}
