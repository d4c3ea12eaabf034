package storage

import (
	"context"
	"fmt"
	"time"

	"mediabot/internal/providers"
	"mediabot/internal/storage/interfaces"
	"mediabot/internal/storage/postgres"
	"mediabot/internal/structures"
)

// NewStore opens the record store selected by storage.driver.
func NewStore(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) (interfaces.StoreInterface, error) {
	switch conf.Storage.Driver {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		store, err := postgres.New(ctx, conf.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		logger.Infof(providers.TypeStorage, "Using postgres record store")
		return store, nil
	case "file", "":
		store, err := NewFileStore(conf.Storage.Dir, conf.Storage.Compress, compressor, logger)
		if err != nil {
			return nil, err
		}
		logger.Infof(providers.TypeStorage, "Using file record store in %s (compress=%t)", conf.Storage.Dir, conf.Storage.Compress)
		return store, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", conf.Storage.Driver)
}

func NewWriteQueue(conf *structures.Config) *Queue {
	return NewQueue(conf.Storage.Queue)
}
