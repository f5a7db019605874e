package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"preop-drug-check/internal/domain/checks"
)

// maxChecks acota el historial en memoria; se descartan los más viejos.
const maxChecks = 500

type checkRepo struct {
	mu   sync.RWMutex
	byID map[string]checks.Check
}

func NewCheckRepo() checks.Repository {
	return &checkRepo{
		byID: make(map[string]checks.Check),
	}
}

func (r *checkRepo) Create(ctx context.Context, c checks.Check) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("check id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("check already exists")
	}
	r.byID[c.ID] = clone(c)

	if len(r.byID) > maxChecks {
		r.evictOldest()
	}
	return nil
}

func (r *checkRepo) GetByID(ctx context.Context, id string) (checks.Check, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return checks.Check{}, checks.ErrNotFound
	}
	return clone(c), nil
}

func (r *checkRepo) ListRecent(ctx context.Context, limit int) ([]checks.Check, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	out := make([]checks.Check, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, clone(c))
	}

	// Más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// evictOldest se llama con el lock tomado.
func (r *checkRepo) evictOldest() {
	var oldestID string
	for id, c := range r.byID {
		if oldestID == "" || c.CreatedAt.Before(r.byID[oldestID].CreatedAt) {
			oldestID = id
		}
	}
	delete(r.byID, oldestID)
}

// clone evita que el caller modifique slices guardados en el repo.
func clone(c checks.Check) checks.Check {
	c.Drugs = append([]string(nil), c.Drugs...)
	c.Results = append([]checks.Result(nil), c.Results...)
	return c
}
