// Package configstore tracks which configuration archive each cluster
// component should run, along with the one version before it.
package configstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/hogwarts-cloud/capturectl/internal/models"
	"github.com/hogwarts-cloud/capturectl/internal/store"
	"github.com/hogwarts-cloud/capturectl/pkg/constants"
	"golang.org/x/crypto/blake2b"
)

// AppVersion is bumped on backwards incompatible changes to deployed config.
const AppVersion = "1"

var (
	ErrNoCurrentConfig  = errors.New("no configuration has been deployed")
	ErrNoPreviousConfig = errors.New("no known previous configuration to roll back to")
)

type Location struct {
	Bucket string `json:"bucket" yaml:"bucket"`
	Key    string `json:"key" yaml:"key"`
}

type Version struct {
	AppVersion    string `json:"appVersion" yaml:"appVersion"`
	ConfigVersion string `json:"configVersion" yaml:"configVersion"`
	Digest        string `json:"digest" yaml:"digest"`
	SourceVersion string `json:"sourceVersion" yaml:"sourceVersion"`
	TimeUTC       string `json:"timeUtc" yaml:"timeUtc"`
}

type Record struct {
	Location Location `json:"location" yaml:"location"`
	Version  Version  `json:"version" yaml:"version"`
	Previous *Record  `json:"previous" yaml:"previous,omitempty"`
}

type Config struct {
	Store     store.Store
	Cluster   string
	Component models.Component
	Logger    *slog.Logger
}

type Store struct {
	store     store.Store
	key       string
	component models.Component
	logger    *slog.Logger
}

func (s *Store) Current(ctx context.Context) (*Record, error) {
	var record Record

	err := store.GetJSON(ctx, s.store, s.key, &record)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w for %s", ErrNoCurrentConfig, s.component)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config record: %w", err)
	}

	return &record, nil
}

// Commit makes next the current record. The old current becomes its previous
// and anything older is dropped.
func (s *Store) Commit(ctx context.Context, next Record) error {
	current, err := s.Current(ctx)
	if err != nil && !errors.Is(err, ErrNoCurrentConfig) {
		return err
	}

	if current != nil {
		current.Previous = nil
	}
	next.Previous = current

	if err := store.PutJSON(ctx, s.store, s.key, next); err != nil {
		return fmt.Errorf("failed to put config record: %w", err)
	}

	s.logger.Info("committed config", "component", s.component, "version", next.Version.ConfigVersion)

	return nil
}

// Revert swaps the current record for its previous one.
func (s *Store) Revert(ctx context.Context) error {
	current, err := s.Current(ctx)
	if err != nil {
		return err
	}

	if current.Previous == nil {
		s.logger.Error("no previous config to revert to",
			"component", s.component,
			"bucket", current.Location.Bucket,
		)
		return ErrNoPreviousConfig
	}

	reverted := *current.Previous
	reverted.Previous = nil

	if err := store.PutJSON(ctx, s.store, s.key, reverted); err != nil {
		return fmt.Errorf("failed to put reverted config record: %w", err)
	}

	s.logger.Warn("reverted config",
		"component", s.component,
		"from", current.Version.ConfigVersion,
		"to", current.Previous.Version.ConfigVersion,
	)

	return nil
}

// NeedsUpdate reports whether an archive with the given digest differs from
// what is deployed.
func (s *Store) NeedsUpdate(ctx context.Context, digest string) (bool, error) {
	current, err := s.Current(ctx)
	if errors.Is(err, ErrNoCurrentConfig) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	return current.Version.Digest != digest, nil
}

// NextRecord builds the record that would follow the current one. Versions
// start at 1.
func (s *Store) NextRecord(ctx context.Context, bucket, digest, sourceVersion string, now time.Time) (Record, error) {
	next := 1

	current, err := s.Current(ctx)
	switch {
	case errors.Is(err, ErrNoCurrentConfig):
	case err != nil:
		return Record{}, err
	default:
		version, err := strconv.Atoi(current.Version.ConfigVersion)
		if err != nil {
			return Record{}, fmt.Errorf("failed to parse config version %q: %w", current.Version.ConfigVersion, err)
		}
		next = version + 1
	}

	return Record{
		Location: Location{
			Bucket: bucket,
			Key:    constants.ConfigObjectKey(s.component.String(), next),
		},
		Version: Version{
			AppVersion:    AppVersion,
			ConfigVersion: strconv.Itoa(next),
			Digest:        digest,
			SourceVersion: sourceVersion,
			TimeUTC:       now.UTC().Format(time.RFC3339),
		},
	}, nil
}

// Digest hashes the file at path with BLAKE2b-256.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create hash: %w", err)
	}

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read archive: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		store:     cfg.Store,
		key:       constants.ConfigDetailsKey(cfg.Cluster, cfg.Component.String()),
		component: cfg.Component,
		logger:    logger,
	}
}
