package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"concierium/internal/domain/catalog"
)

type catalogRepo struct {
	mu           sync.RWMutex
	destinations map[string]catalog.Destination
	providers    map[string]catalog.Provider
	items        map[string]catalog.Item
}

func NewCatalogRepo() catalog.Repository {
	return &catalogRepo{
		destinations: make(map[string]catalog.Destination),
		providers:    make(map[string]catalog.Provider),
		items:        make(map[string]catalog.Item),
	}
}

func (r *catalogRepo) SaveDestination(ctx context.Context, d catalog.Destination) error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("destination id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destinations[d.ID] = d
	return nil
}

func (r *catalogRepo) GetDestination(ctx context.Context, id string) (catalog.Destination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.destinations[id]
	if !ok {
		return catalog.Destination{}, catalog.ErrNotFound
	}
	return d, nil
}

func (r *catalogRepo) ListDestinations(ctx context.Context, onlyActive bool) ([]catalog.Destination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Destination, 0, len(r.destinations))
	for _, d := range r.destinations {
		if onlyActive && !d.IsActive {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *catalogRepo) SaveProvider(ctx context.Context, p catalog.Provider) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("provider id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID] = p
	return nil
}

func (r *catalogRepo) GetProvider(ctx context.Context, id string) (catalog.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return catalog.Provider{}, catalog.ErrNotFound
	}
	return p, nil
}

func (r *catalogRepo) ListProviders(ctx context.Context, onlyActive bool) ([]catalog.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if onlyActive && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsActive != out[j].IsActive {
			return out[i].IsActive
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *catalogRepo) SaveItem(ctx context.Context, it catalog.Item) error {
	if strings.TrimSpace(it.ID) == "" {
		return errors.New("item id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[it.ID] = it
	return nil
}

func (r *catalogRepo) GetItem(ctx context.Context, id string) (catalog.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	if !ok {
		return catalog.Item{}, catalog.ErrNotFound
	}
	return it, nil
}

func (r *catalogRepo) ListItems(ctx context.Context, onlyActive bool) ([]catalog.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Item, 0, len(r.items))
	for _, it := range r.items {
		if onlyActive && !it.IsActive {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ServiceKind != out[j].ServiceKind {
			return out[i].ServiceKind < out[j].ServiceKind
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
