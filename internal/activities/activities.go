package activities

import (
	"go.uber.org/zap"

	"github.com/yourorg/market-metrics/internal/db"
	"github.com/yourorg/market-metrics/internal/fetch"
)

type Config struct {
	ScratchDir string
}

type Activities struct {
	cfg     Config
	log     *zap.Logger
	fetcher *fetch.Fetcher
	runs    db.RunRepository // nil when no database is configured
}

func New(cfg Config, log *zap.Logger, runs db.RunRepository) *Activities {
	return &Activities{
		cfg:     cfg,
		log:     log,
		fetcher: fetch.New(nil),
		runs:    runs,
	}
}
