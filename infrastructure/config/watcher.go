package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"cortex-backend/domain/services"
)

// StaticWeights is a WeightsProvider that never changes. Used when no
// weights file is configured.
type StaticWeights struct {
	weights services.Weights
}

// NewStaticWeights returns a provider pinned to the given vector.
func NewStaticWeights(w services.Weights) *StaticWeights {
	return &StaticWeights{weights: w}
}

// Current returns the pinned weights.
func (s *StaticWeights) Current() services.Weights {
	return s.weights
}

// WeightsWatcher watches a YAML weights file and hot-reloads scoring
// weights on change. Invalid or unreadable files keep the previous
// vector in place.
type WeightsWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  services.Weights
	mu       sync.RWMutex
	onChange []func(services.Weights)
	logger   *zap.Logger
	stopCh   chan struct{}
}

// NewWeightsWatcher creates a watcher for the given weights file. The
// file must exist and parse at startup; later failures only log.
func NewWeightsWatcher(path string, logger *zap.Logger) (*WeightsWatcher, error) {
	weights, err := loadWeightsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial weights: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch weights file: %w", err)
	}

	// Also watch the directory for atomic saves (rename operations)
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		logger.Warn("Failed to watch weights directory", zap.Error(err))
	}

	return &WeightsWatcher{
		path:     path,
		watcher:  watcher,
		current:  weights,
		onChange: make([]func(services.Weights), 0),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching for weight changes
func (w *WeightsWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Weights watcher started", zap.String("path", w.path))
}

// Stop stops watching for weight changes
func (w *WeightsWatcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	w.logger.Info("Weights watcher stopped")
}

// Current returns the active weight vector.
func (w *WeightsWatcher) Current() services.Weights {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback for weight changes
func (w *WeightsWatcher) OnChange(handler func(services.Weights)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// watchLoop is the main loop that watches for file changes
func (w *WeightsWatcher) watchLoop() {
	// Debounce to avoid multiple reloads from editors that write twice
	var debounceTimer *time.Timer
	debounceDuration := 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					w.handleChange()
				})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

// handleChange reloads the weights file after a change event
func (w *WeightsWatcher) handleChange() {
	w.logger.Info("Weights file changed, reloading", zap.String("path", w.path))

	newWeights, err := loadWeightsFromFile(w.path)
	if err != nil {
		w.logger.Error("Failed to reload weights, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	oldWeights := w.current
	w.current = newWeights
	handlers := make([]func(services.Weights), len(w.onChange))
	copy(handlers, w.onChange)
	w.mu.Unlock()

	if oldWeights != newWeights {
		w.logger.Info("Scoring weights reloaded",
			zap.Float64("scope", newWeights.Scope),
			zap.Float64("recency", newWeights.Recency),
			zap.Float64("authority", newWeights.Authority),
			zap.Float64("confidence", newWeights.Confidence),
			zap.Float64("risk", newWeights.Risk),
		)
	}

	for _, handler := range handlers {
		go handler(newWeights)
	}
}

// loadWeightsFromFile loads a weight vector from a YAML file. Fields
// absent from the file keep their default value.
func loadWeightsFromFile(path string) (services.Weights, error) {
	weights := services.DefaultWeights()

	data, err := os.ReadFile(path)
	if err != nil {
		return weights, fmt.Errorf("failed to read weights file: %w", err)
	}

	if err := yaml.Unmarshal(data, &weights); err != nil {
		return weights, fmt.Errorf("failed to parse weights YAML: %w", err)
	}

	if err := validateWeights(weights); err != nil {
		return weights, err
	}
	return weights, nil
}

// validateWeights rejects vectors that could not produce a sane score
func validateWeights(w services.Weights) error {
	for name, v := range map[string]float64{
		"scope":      w.Scope,
		"recency":    w.Recency,
		"authority":  w.Authority,
		"confidence": w.Confidence,
		"risk":       w.Risk,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("weight %s must be between 0 and 1, got %v", name, v)
		}
	}
	return nil
}
