// cmd/forecast/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/stockpilot/backend-go/internal/cache"
	"github.com/stockpilot/backend-go/internal/config"
	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/repository/postgres"
	"github.com/stockpilot/backend-go/internal/service"
	"github.com/stockpilot/backend-go/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "forecast",
		Usage: "Run depletion forecasts from the command line",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Generate forecasts for every item in the catalog",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "workers",
						Usage:   "Number of concurrent forecast workers",
						EnvVars: []string{"FORECAST_BATCH_WORKERS"},
					},
				},
				Action: runAll,
			},
			{
				Name:  "item",
				Usage: "Generate a forecast for a single SKU",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "sku",
						Usage:    "SKU to forecast",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "stock",
						Usage: "Override the stored stock level before forecasting",
						Value: -1,
					},
				},
				Action: runItem,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func buildService(workers int) (*service.ForecastService, func(), error) {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	alertsCache, err := cache.NewAlertsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		alertsCache = cache.NewNoopAlertsCache()
	}

	forecastCfg := cfg.Forecast
	if workers > 0 {
		forecastCfg.BatchWorkerCount = workers
	}

	svc := service.NewForecastService(
		postgres.NewItemRepository(db),
		postgres.NewSalesRepository(db),
		postgres.NewPredictionRepository(db),
		alertsCache,
		forecastCfg,
	)

	return svc, func() { db.Close() }, nil
}

func runAll(c *cli.Context) error {
	svc, closeFn, err := buildService(c.Int("workers"))
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := svc.GenerateAll(c.Context)
	if err != nil {
		return err
	}

	logger.Log.Info().
		Int("generated", result.Generated).
		Int("failed", len(result.Failures)).
		Dur("duration", result.Duration).
		Msg("Forecast run completed")

	for _, f := range result.Failures {
		logger.Log.Warn().Str("sku", f.SKU).Str("error", f.Error).Msg("Forecast failed")
	}

	if len(result.Failures) > 0 {
		return fmt.Errorf("%d of %d forecasts failed", len(result.Failures), result.Generated+len(result.Failures))
	}
	return nil
}

func runItem(c *cli.Context) error {
	svc, closeFn, err := buildService(0)
	if err != nil {
		return err
	}
	defer closeFn()

	var stockOverride *int
	if stock := c.Int("stock"); stock >= 0 {
		stockOverride = &stock
	}

	prediction, err := svc.GenerateForItem(c.Context, strings.ToUpper(strings.TrimSpace(c.String("sku"))), stockOverride)
	if err != nil {
		return err
	}

	printPrediction(prediction)
	return nil
}

func printPrediction(p *domain.Prediction) {
	runOut := "none within horizon"
	if p.PredictedRunOutDate != nil {
		runOut = p.PredictedRunOutDate.Format("2006-01-02")
	}

	fmt.Printf("SKU:              %s\n", p.SKU)
	fmt.Printf("Sales velocity:   %.2f units/day\n", p.SalesVelocity)
	fmt.Printf("Run-out date:     %s\n", runOut)
	fmt.Printf("Confidence:       %.2f\n", p.ConfidenceScore)
	fmt.Printf("Seasonal factor:  %.2f\n", p.SeasonalFactor)
	fmt.Printf("Data points:      %d\n", p.DataPoints)
}
