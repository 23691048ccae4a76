package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/moznion/go-optional"
	"github.com/urfave/cli/v3"

	engine "github.com/streaklab/streakback/internal/backtest/engine/engine_v1"
	"github.com/streaklab/streakback/internal/export"
	"github.com/streaklab/streakback/internal/logger"
	"github.com/streaklab/streakback/pkg/marketdata"
)

// backtestAction assembles a config from the CLI flags, runs one backtest,
// and prints the report as JSON.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	zlog, err := logger.NewLogger()
	if err != nil {
		return err
	}

	provider, err := buildProvider(cmd, zlog)
	if err != nil {
		return err
	}

	config, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	backtester, err := engine.NewBacktestEngineV1FromConfig(config)
	if err != nil {
		return err
	}

	if err := backtester.SetDataProvider(provider); err != nil {
		return err
	}

	report, err := backtester.Run(ctx)
	if err != nil {
		return err
	}

	if outputDir := cmd.String("output"); outputDir != "" {
		writer, err := export.NewCSVWriter(outputDir, report.ID)
		if err != nil {
			return err
		}
		defer writer.Close()

		if err := writer.WriteTrades(report.Trades); err != nil {
			return err
		}

		if err := writer.WriteDailySeries(report.DailySeries); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "results written to %s\n", writer.RunDir())
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(report)
}

func buildProvider(cmd *cli.Command, zlog *logger.Logger) (marketdata.Provider, error) {
	var (
		inner marketdata.Provider
		err   error
	)

	if dir := cmd.String("csv-data"); dir != "" {
		inner, err = marketdata.NewCSVProvider(dir)
	} else {
		inner, err = marketdata.NewAlpacaProvider(
			os.Getenv("APCA_API_KEY_ID"),
			os.Getenv("APCA_API_SECRET_KEY"),
			os.Getenv("APCA_API_BASE_URL"),
		)
	}

	if err != nil {
		return nil, err
	}

	return marketdata.NewRetryProvider(inner, 0, 0, zlog), nil
}

func buildConfig(cmd *cli.Command) (engine.BacktestConfig, error) {
	config := engine.BacktestConfig{
		Symbol:            cmd.String("symbol"),
		BenchmarkSymbol:   cmd.String("benchmark"),
		InitialInvestment: cmd.Float("investment"),
		ConsecutiveDays:   int(cmd.Int("days")),
	}

	if cmd.IsSet("small") || cmd.IsSet("large") {
		config.TradeSize = engine.TradeSizeConfig{
			Policy:               engine.PolicyKindScaled,
			SmallShares:          cmd.Int("small"),
			LargeShares:          cmd.Int("large"),
			MovementThresholdPct: cmd.Float("movement"),
		}
	} else {
		config.TradeSize = engine.TradeSizeConfig{
			Policy: engine.PolicyKindFixed,
			Shares: cmd.Int("shares"),
		}
	}

	if cmd.IsSet("start") {
		config.StartTime = optional.Some(cmd.Timestamp("start"))
	}

	if cmd.IsSet("end") {
		config.EndTime = optional.Some(cmd.Timestamp("end"))
	}

	return config, nil
}

func newCommand() *cli.Command {
	dateConfig := cli.TimestampConfig{
		Layouts: []string{"2006-01-02"},
	}

	return &cli.Command{
		Name:  "backtest",
		Usage: "Backtest the streak reversal strategy against daily bars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"t"},
				Usage:    "Stock ticker symbol to backtest",
				Required: true,
			},
			&cli.FloatFlag{
				Name:    "investment",
				Aliases: []string{"i"},
				Usage:   "Initial cash balance",
				Value:   10000,
			},
			&cli.IntFlag{
				Name:    "days",
				Aliases: []string{"d"},
				Usage:   "Consecutive up or down days that trigger a trade",
				Value:   3,
			},
			&cli.IntFlag{
				Name:  "shares",
				Usage: "Shares per trade for fixed sizing",
				Value: 10,
			},
			&cli.IntFlag{
				Name:  "small",
				Usage: "Shares per trade below the movement threshold (scaled sizing)",
			},
			&cli.IntFlag{
				Name:  "large",
				Usage: "Shares per trade at or above the movement threshold (scaled sizing)",
			},
			&cli.FloatFlag{
				Name:  "movement",
				Usage: "Percent move over the streak that separates small from large trades",
			},
			&cli.StringFlag{
				Name:  "benchmark",
				Usage: "Benchmark ticker for the comparison series",
			},
			&cli.TimestampFlag{
				Name:   "start",
				Usage:  "Start date in `YYYY-MM-DD` format",
				Config: dateConfig,
			},
			&cli.TimestampFlag{
				Name:   "end",
				Usage:  "End date in `YYYY-MM-DD` format",
				Config: dateConfig,
			},
			&cli.StringFlag{
				Name:  "csv-data",
				Usage: "Directory of per-symbol CSV files to use instead of the Alpaca API",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory to write trade and series CSV exports into",
			},
		},
		Action: backtestAction,
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
