package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/kittclouds/goprep/internal/store"
)

const maxSheetBytes = 4 << 20

// Loader fetches a nested sheet over HTTP. It is total: every failure path
// resolves to the fallback dataset, so callers always receive a usable
// state. Fetches can be superseded: when several run, only the most recent
// one reports ok and may be applied.
type Loader struct {
	url        string
	client     *http.Client
	logger     *slog.Logger
	generation atomic.Uint64
}

// NewLoader creates a loader for the given sheet URL. An empty URL skips the
// network entirely and serves the fallback.
func NewLoader(url string, timeout time.Duration, logger *slog.Logger) *Loader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch retrieves and normalizes the sheet. The boolean is false when a
// newer Fetch started while this one was in flight; a superseded result
// must not be applied to the store.
func (l *Loader) Fetch(ctx context.Context) (store.State, bool) {
	gen := l.generation.Add(1)

	sheet, err := l.fetch(ctx)
	if err != nil {
		l.logger.Warn("seed fetch failed, using fallback", "url", l.url, "error", err)
		sheet = Fallback()
	}

	st, err := Normalize(sheet)
	if err != nil {
		l.logger.Warn("seed sheet rejected, using fallback", "url", l.url, "error", err)
		st, _ = Normalize(Fallback())
	}

	return st, l.generation.Load() == gen
}

func (l *Loader) fetch(ctx context.Context) (Sheet, error) {
	if l.url == "" {
		return Fallback(), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return Sheet{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return Sheet{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Sheet{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSheetBytes))
	if err != nil {
		return Sheet{}, err
	}

	var sheet Sheet
	if err := json.Unmarshal(body, &sheet); err != nil {
		return Sheet{}, fmt.Errorf("decode sheet: %w", err)
	}
	return sheet, nil
}
