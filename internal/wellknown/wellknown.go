package wellknown

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/core-coin/stips/pkg/logger"
	"github.com/core-coin/stips/pkg/validation"
)

const (
	// RefreshInterval is how often the reserved-handle list is re-fetched
	RefreshInterval = 1 * time.Hour
)

// ReservedResponse represents the response from .well-known/reserved-handles.json
type ReservedResponse struct {
	Handles []string `json:"handles"`
}

// ReservedHandles fetches and caches the platform's reserved-handle list so
// the registry can refuse brand and infrastructure names. The cache is
// consulted on every registration; fetch failures keep the previous list.
type ReservedHandles struct {
	logger  *logger.Logger
	baseURL string
	client  *http.Client

	// In-memory cache keyed by normalized handle
	cacheMutex sync.RWMutex
	cache      map[string]bool

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReservedHandles creates a new ReservedHandles instance
func NewReservedHandles(logger *logger.Logger, baseURL string) *ReservedHandles {
	ctx, cancel := context.WithCancel(context.Background())
	return &ReservedHandles{
		logger:  logger,
		baseURL: baseURL,
		cache:   make(map[string]bool),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start fetches the list once and keeps refreshing it in the background
func (w *ReservedHandles) Start() {
	if err := w.FetchAndUpdate(); err != nil {
		w.logger.Error("Failed to fetch reserved handles ", "error ", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				if err := w.FetchAndUpdate(); err != nil {
					w.logger.Error("Failed to refresh reserved handles ", "error ", err)
				}
			}
		}
	}()
}

// Stop terminates the refresh loop
func (w *ReservedHandles) Stop() {
	w.cancel()
	w.wg.Wait()
}

// FetchAndUpdate fetches the reserved-handle list and replaces the cache
func (w *ReservedHandles) FetchAndUpdate() error {
	url := fmt.Sprintf("%s/.well-known/reserved-handles.json", w.baseURL)

	resp, err := w.client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch reserved handles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var reservedResp ReservedResponse
	if err := json.NewDecoder(resp.Body).Decode(&reservedResp); err != nil {
		return fmt.Errorf("failed to decode reserved handles response: %w", err)
	}

	newCache := make(map[string]bool, len(reservedResp.Handles))
	for _, handle := range reservedResp.Handles {
		newCache[validation.NormalizeHandle(handle)] = true
	}

	w.cacheMutex.Lock()
	w.cache = newCache
	w.cacheMutex.Unlock()

	w.logger.Info(fmt.Sprintf("Cached %d reserved handles", len(newCache)))
	return nil
}

// IsReserved reports whether a normalized handle is on the reserved list
func (w *ReservedHandles) IsReserved(normalized string) bool {
	w.cacheMutex.RLock()
	defer w.cacheMutex.RUnlock()
	return w.cache[normalized]
}
