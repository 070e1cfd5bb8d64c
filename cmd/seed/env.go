package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"neetmentor-backend/internal/config"
	"neetmentor-backend/internal/database"
)

type env struct {
	cfg  *config.Config
	pool *pgxpool.Pool
}

func withPool(ctx context.Context, fn func(ctx context.Context, env *env) error) error {
	cfg := config.Load()
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, &env{cfg: cfg, pool: pool})
}
