package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/streaklab/streakback/internal/api"
	"github.com/streaklab/streakback/internal/logger"
	"github.com/streaklab/streakback/pkg/marketdata"
)

func serveAction(ctx context.Context, cmd *cli.Command) error {
	zlog, err := logger.NewLogger()
	if err != nil {
		return err
	}

	var inner marketdata.Provider

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
		return err
	}

	provider := marketdata.NewRetryProvider(inner, 0, 0, zlog)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(cmd.String("addr"), provider, zlog)

	return server.ListenAndServe(ctx)
}

func main() {
	cmd := &cli.Command{
		Name:  "server",
		Usage: "Serve the streak backtester over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Listen address",
				Value:   ":8080",
			},
			&cli.StringFlag{
				Name:  "csv-data",
				Usage: "Directory of per-symbol CSV files to use instead of the Alpaca API",
			},
		},
		Action: serveAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
