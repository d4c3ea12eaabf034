package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mediabot/internal/errs"
	"mediabot/internal/providers"
	"mediabot/internal/storage/interfaces"
)

const (
	plainExt      = ".json"
	compressedExt = ".json.zst"
)

// FileStore keeps one file per record inside a directory. Writes go to a
// temp file that is synced and renamed over the target.
type FileStore struct {
	dir        string
	ext        string
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileStore(dir string, compressed bool, compressor interfaces.CompressorInterface, logger providers.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	ext := plainExt
	if compressed {
		ext = compressedExt
	}
	return &FileStore{
		dir:        dir,
		ext:        ext,
		compressor: compressor,
		logger:     logger,
	}, nil
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, "./\\") {
		return fmt.Errorf("%w: record key %q", errs.ErrInvalidInput, key)
	}
	return nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, strings.ReplaceAll(key, ":", ".")+f.ext)
}

func (f *FileStore) Save(_ context.Context, key string, data []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	payload, err := f.compressor.Compress(data)
	if err != nil {
		return err
	}

	fileName := f.path(key)
	tmpFile := fileName + ".tmp"
	file, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	_, err = file.Write(payload)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileStore) Load(_ context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	out, err := f.compressor.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decode record %s: %w", key, err)
	}
	return out, nil
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (f *FileStore) Keys(_ context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, f.ext) {
			continue
		}
		key := strings.ReplaceAll(strings.TrimSuffix(name, f.ext), ".", ":")
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *FileStore) Close() error {
	f.compressor.Close()
	return nil
}
