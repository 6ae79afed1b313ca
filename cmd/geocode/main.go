// Command geocode backfills campus coordinates from the College
// Scorecard API. Only colleges with a scorecard ID and no coordinates
// are touched, so reruns are cheap.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"go.uber.org/zap"

	"github.com/PennQuinnDad/college-quest/config"
	"github.com/PennQuinnDad/college-quest/pkg/database"
	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/PennQuinnDad/college-quest/pkg/repositories"
	"github.com/PennQuinnDad/college-quest/pkg/scorecard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLogger, _ := zap.NewProduction()
	defer func() { _ = zapLogger.Sync() }()
	logger := zapadapter.NewZapEctoLogger(zapLogger, nil)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Geocode backfill failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger ectologger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, database.Config{
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	client, err := scorecard.NewClient(scorecard.Config{
		BaseURL: cfg.ScorecardAPIURL,
		APIKey:  cfg.ScorecardAPIKey,
	}, logger)
	if err != nil {
		return err
	}

	colleges := repositories.NewCollegeRepository(db, logger, cfg.MaxRowsPerQuery)

	var updated, missing int
	afterID := ""
	for {
		batch, err := colleges.ListMissingCoordinates(ctx, afterID, scorecard.MaxBatchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}
		afterID = batch[len(batch)-1].ID

		byScorecardID := make(map[string]models.College, len(batch))
		ids := make([]string, 0, len(batch))
		for _, college := range batch {
			if college.ScorecardID == nil {
				continue
			}
			byScorecardID[*college.ScorecardID] = college
			ids = append(ids, *college.ScorecardID)
		}

		locations, err := client.Lookup(ctx, ids)
		if err != nil {
			return err
		}

		for scorecardID, college := range byScorecardID {
			location, ok := locations[scorecardID]
			if !ok {
				missing++
				logger.WithFields(map[string]any{
					"college_id":   college.ID,
					"scorecard_id": scorecardID,
				}).Warn("No coordinates returned for college")
				continue
			}
			if err := colleges.SetCoordinates(ctx, college.ID, location.Latitude, location.Longitude); err != nil {
				return err
			}
			updated++
		}
	}

	logger.WithFields(map[string]any{
		"updated": updated,
		"missing": missing,
	}).Info("Geocode backfill complete")
	return nil
}
