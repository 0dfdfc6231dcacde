// Package database wraps the pgx connection pool behind a small
// Service interface so handlers depend on an interface, not the pool
// type directly.
package database

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tawteen-backend/internal/config"
)

// Service exposes the database to the rest of the application.
type Service interface {
	// GetPool returns the underlying pgx pool for queries.
	GetPool() *pgxpool.Pool
	// Health reports connectivity status for the /api/health endpoint.
	Health() map[string]string
	// Close releases all pooled connections.
	Close()
}

type service struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL, verifies the connection, and bootstraps
// the schema. Exits the process on failure — the API is useless
// without its database.
func New(cfg *config.DBConfig) Service {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		log.Fatalf("Invalid DATABASE_URL: %v", err)
	}
	poolCfg.MaxConns = cfg.MaxConns

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	if err := bootstrap(ctx, pool); err != nil {
		log.Fatalf("Failed to bootstrap schema: %v", err)
	}

	log.Println("Connected to PostgreSQL")
	return &service{pool: pool}
}

func (s *service) GetPool() *pgxpool.Pool {
	return s.pool
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		return map[string]string{"status": "down", "error": err.Error()}
	}
	return map[string]string{"status": "up"}
}

func (s *service) Close() {
	s.pool.Close()
}
