package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventfoto/face-indexer/internal/cache"
	"github.com/eventfoto/face-indexer/internal/config"
	"github.com/eventfoto/face-indexer/internal/database/postgres"
	"github.com/eventfoto/face-indexer/internal/indexer"
	"github.com/eventfoto/face-indexer/internal/photostore"
	"github.com/eventfoto/face-indexer/internal/recognition"
)

// services bundles the wired collaborators shared by the commands.
type services struct {
	indexer *indexer.Service
	store   *photostore.Store
	faces   *recognition.Rekognition
	cache   *cache.EventCache
}

// buildServices connects storage, database and the recognition service from
// the loaded configuration.
func buildServices(ctx context.Context, cfg *config.Config) (*services, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	if err := postgres.Initialize(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	records := postgres.NewRecordRepository(postgres.GetGlobalPool())

	store, err := photostore.NewStore(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("connecting to object storage: %w", err)
	}

	faces, err := recognition.NewRekognition(ctx, &cfg.Recognition, &cfg.Face)
	if err != nil {
		return nil, fmt.Errorf("connecting to recognition service: %w", err)
	}

	eventCache := cache.New()
	svc := indexer.NewService(store, faces, records, eventCache,
		cfg.Indexing, cfg.Recognition.CollectionPrefix, nil)

	return &services{
		indexer: svc,
		store:   store,
		faces:   faces,
		cache:   eventCache,
	}, nil
}
