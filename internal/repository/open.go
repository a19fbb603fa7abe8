package repository

import (
	"context"
	"fmt"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/database"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/logger"
)

// Open picks a backend from the DATABASE_URL scheme. MongoDB gets its
// indexes ensured and Postgres gets pending migrations applied.
func Open(ctx context.Context, url string, log *logger.Logger) (Repository, error) {
	switch scheme := database.Scheme(url); scheme {
	case "mongodb":
		client, db, err := database.ConnectMongo(ctx, url)
		if err != nil {
			return nil, err
		}
		repo := NewMongoRepository(client, db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to ensure indexes: %w", err)
		}
		log.Info("Connected to MongoDB", "database", db.Name())
		return repo, nil

	case "postgres":
		db, err := database.Connect(ctx, url)
		if err != nil {
			return nil, err
		}
		applied, err := db.RunMigrations(ctx)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Info("Connected to PostgreSQL", "migrations_applied", len(applied))
		return NewPostgresRepository(db.DB), nil

	case "bolt":
		db, err := database.OpenBolt(url)
		if err != nil {
			return nil, err
		}
		repo, err := NewBoltRepository(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Info("Opened bolt store", "path", database.BoltPath(url))
		return repo, nil

	default:
		return nil, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}
