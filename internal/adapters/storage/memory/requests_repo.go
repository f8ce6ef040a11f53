package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"concierium/internal/domain/requests"
)

type requestsRepo struct {
	mu      sync.RWMutex
	byID    map[string]requests.Request
	history map[string][]requests.StatusHistoryEntry
	seq     map[string]int64
}

func NewRequestsRepo() requests.Repository {
	return &requestsRepo{
		byID:    make(map[string]requests.Request),
		history: make(map[string][]requests.StatusHistoryEntry),
		seq:     make(map[string]int64),
	}
}

func (r *requestsRepo) Create(ctx context.Context, req requests.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(req.ID) == "" {
		return errors.New("request id required")
	}
	if _, exists := r.byID[req.ID]; exists {
		return errors.New("request already exists")
	}
	r.byID[req.ID] = cloneRequest(req)
	return nil
}

// Update toca solo el payload descriptivo: el estado y la asignación de
// admin se preservan de lo persistido, cambian únicamente vía UpdateStatus.
func (r *requestsRepo) Update(ctx context.Context, req requests.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.byID[req.ID]
	if !exists {
		return requests.ErrNotFound
	}

	next := cloneRequest(req)
	next.CurrentStatus = stored.CurrentStatus
	next.AssignedAdminID = stored.AssignedAdminID
	next.CreatedAt = stored.CreatedAt
	r.byID[req.ID] = next
	return nil
}

func (r *requestsRepo) GetByID(ctx context.Context, id string) (requests.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.byID[id]
	if !ok {
		return requests.Request{}, requests.ErrNotFound
	}
	return cloneRequest(req), nil
}

func (r *requestsRepo) ListByClient(ctx context.Context, clientID string, status requests.Status) ([]requests.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]requests.Request, 0)
	for _, req := range r.byID {
		if req.ClientID != clientID {
			continue
		}
		if status != "" && req.CurrentStatus != status {
			continue
		}
		out = append(out, cloneRequest(req))
	}
	sortByCreatedDesc(out)
	return out, nil
}

func (r *requestsRepo) List(ctx context.Context, status requests.Status, limit int) ([]requests.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]requests.Request, 0)
	for _, req := range r.byID {
		if status != "" && req.CurrentStatus != status {
			continue
		}
		out = append(out, cloneRequest(req))
	}
	sortByCreatedDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateStatus es el CAS: bajo el lock, el check del estado esperado y la
// escritura (status + historial + asignación first-touch) son una sola
// operación. Dos transiciones concurrentes desde el mismo estado: gana una.
func (r *requestsRepo) UpdateStatus(ctx context.Context, w requests.StatusWrite) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[w.RequestID]
	if !ok {
		return false, requests.ErrNotFound
	}
	if req.CurrentStatus != w.ExpectedStatus {
		return false, nil
	}

	req.CurrentStatus = w.NewStatus
	req.UpdatedAt = w.Now
	if w.AssignAdminID != "" && req.AssignedAdminID == nil {
		admin := w.AssignAdminID
		req.AssignedAdminID = &admin
	}
	r.byID[w.RequestID] = req

	r.seq[w.RequestID]++
	entry := w.Entry
	entry.Seq = r.seq[w.RequestID]
	r.history[w.RequestID] = append(r.history[w.RequestID], entry)

	return true, nil
}

func (r *requestsRepo) ListHistory(ctx context.Context, requestID string) ([]requests.StatusHistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.history[requestID]
	out := make([]requests.StatusHistoryEntry, len(src))
	copy(out, src)
	return out, nil
}

func sortByCreatedDesc(items []requests.Request) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// cloneRequest copia todos los campos con referencia (slice y punteros) para
// que los callers no puedan mutar lo persistido por accidente.
func cloneRequest(req requests.Request) requests.Request {
	out := req
	if req.Interests != nil {
		out.Interests = append([]string(nil), req.Interests...)
	}
	out.DestinationID = cloneptr(req.DestinationID)
	out.CatalogID = cloneptr(req.CatalogID)
	out.StartDate = cloneptr(req.StartDate)
	out.EndDate = cloneptr(req.EndDate)
	out.Guests = cloneptr(req.Guests)
	out.BudgetUSD = cloneptr(req.BudgetUSD)
	out.AssignedAdminID = cloneptr(req.AssignedAdminID)
	return out
}

func cloneptr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
