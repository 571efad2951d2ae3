package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/ferdiebergado/hbnb/internal/model"
)

var (
	ErrWriteFailed = errors.New("storage: write failed")
	ErrReadFailed  = errors.New("storage: read failed")
	ErrCorrupt     = errors.New("storage: corrupt object")
)

// Objects maps "<Class>.<id>" keys to serialized models.
type Objects map[string]map[string]any

// Backend performs the durable I/O for an Engine.
type Backend interface {
	Write(ctx context.Context, objects Objects) error
	// Read returns an empty set when nothing has been written yet.
	Read(ctx context.Context) (Objects, error)
}

// Engine is the in-memory registry of models backed by durable storage.
type Engine struct {
	mu      sync.RWMutex
	objects map[string]*model.Model
	backend Backend
}

var _ model.Storage = &Engine{}

func New(backend Backend) *Engine {
	return &Engine{
		objects: make(map[string]*model.Model),
		backend: backend,
	}
}

// Register adds or replaces m in the registry and attaches the engine to it.
func (e *Engine) Register(m *model.Model) {
	m.Attach(e)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.objects[m.Key()] = m
}

func (e *Engine) Persist(ctx context.Context) error {
	e.mu.RLock()
	objects := make(Objects, len(e.objects))
	for k, m := range e.objects {
		objects[k] = m.ToMap()
	}
	e.mu.RUnlock()

	if err := e.backend.Write(ctx, objects); err != nil {
		return fmt.Errorf("persist %d objects: %w", len(objects), err)
	}

	slog.Debug("Objects persisted.", "count", len(objects))
	return nil
}

// Reload replaces the registry with the content of the backend.
func (e *Engine) Reload(ctx context.Context) error {
	data, err := e.backend.Read(ctx)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	objects := make(map[string]*model.Model, len(data))
	for key, fields := range data {
		class, _ := fields[model.KeyClass].(string)
		if _, ok := model.LookupClass(class); !ok {
			slog.Warn("Skipping object of unknown class.", "key", key, "class", class)
			continue
		}

		m, err := model.FromMap(fields, model.WithClass(class), model.WithStorage(e))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
		}
		objects[m.Key()] = m
	}

	e.mu.Lock()
	e.objects = objects
	e.mu.Unlock()

	slog.Debug("Objects reloaded.", "count", len(objects))
	return nil
}

// All returns the models of class, or every model when class is empty,
// ordered by key.
func (e *Engine) All(class string) []*model.Model {
	e.mu.RLock()
	defer e.mu.RUnlock()

	prefix := ""
	if class != "" {
		prefix = class + "."
	}

	keys := make([]string, 0, len(e.objects))
	for k := range e.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	models := make([]*model.Model, 0, len(keys))
	for _, k := range keys {
		models = append(models, e.objects[k])
	}
	return models
}

func (e *Engine) Count(class string) int {
	return len(e.All(class))
}

func (e *Engine) Get(class, id string) (*model.Model, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	m, ok := e.objects[class+"."+id]
	return m, ok
}

// Delete removes a model from the registry. The change is durable only
// after the next Persist.
func (e *Engine) Delete(class, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := class + "." + id
	if _, ok := e.objects[key]; !ok {
		return false
	}
	delete(e.objects, key)
	return true
}
