// Package catalog loads question pools from the bundled files and the
// optional remote source before the engine merges them.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/DMALUVM/satprep-planner/internal/config"
	"github.com/DMALUVM/satprep-planner/internal/models"
)

const remoteFetchTimeout = 10 * time.Second

// Loader reads raw question pools from disk and the remote endpoint
type Loader struct {
	cfg    config.CatalogConfig
	client *http.Client
	logger *slog.Logger
}

func NewLoader(cfg config.CatalogConfig, logger *slog.Logger) *Loader {
	return &Loader{
		cfg:    cfg,
		client: &http.Client{Timeout: remoteFetchTimeout},
		logger: logger,
	}
}

// LoadBundled reads the bundled math pool from disk
func (l *Loader) LoadBundled() ([]models.RawQuestion, error) {
	return l.loadFile(l.cfg.BundledPath)
}

// LoadVerbal reads the verbal pool from disk
func (l *Loader) LoadVerbal() ([]models.RawQuestion, error) {
	return l.loadFile(l.cfg.VerbalPath)
}

// FetchRemote pulls the remote question pool. Any failure returns an empty
// slice so callers fall back to the bundled pool; the error is logged but
// never propagated.
func (l *Loader) FetchRemote(ctx context.Context) []models.RawQuestion {
	if l.cfg.RemoteURL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.cfg.RemoteURL, nil)
	if err != nil {
		l.logger.Warn("Remote catalog request build failed, using bundled pool",
			"error", err, "url", l.cfg.RemoteURL)
		return nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Warn("Remote catalog fetch failed, using bundled pool",
			"error", err, "url", l.cfg.RemoteURL)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.logger.Warn("Remote catalog returned non-200, using bundled pool",
			"status", resp.StatusCode, "url", l.cfg.RemoteURL)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		l.logger.Warn("Remote catalog read failed, using bundled pool", "error", err)
		return nil
	}

	questions, err := decodePool(body)
	if err != nil {
		l.logger.Warn("Remote catalog decode failed, using bundled pool", "error", err)
		return nil
	}

	l.logger.Info("Remote catalog fetched", "questions", len(questions))
	return questions
}

// LoadAll gathers the three pools. Only the bundled pool is required;
// a missing verbal file degrades to math-only planning.
func (l *Loader) LoadAll(ctx context.Context) (bundled, remote, verbal []models.RawQuestion, err error) {
	bundled, err = l.LoadBundled()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load bundled catalog: %w", err)
	}

	remote = l.FetchRemote(ctx)

	verbal, verbalErr := l.LoadVerbal()
	if verbalErr != nil {
		l.logger.Warn("Verbal pool unavailable", "error", verbalErr, "path", l.cfg.VerbalPath)
		verbal = nil
	}

	return bundled, remote, verbal, nil
}

func (l *Loader) loadFile(path string) ([]models.RawQuestion, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog path not configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return decodePool(data)
}

// decodePool accepts either a bare array or an object with a "questions" key
func decodePool(data []byte) ([]models.RawQuestion, error) {
	var questions []models.RawQuestion
	if err := json.Unmarshal(data, &questions); err == nil {
		return questions, nil
	}

	var wrapped struct {
		Questions []models.RawQuestion `json:"questions"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode question pool: %w", err)
	}
	return wrapped.Questions, nil
}
