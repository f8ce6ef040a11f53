package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"concierium/internal/domain/attachments"
)

type attachmentsRepo struct {
	mu        sync.RWMutex
	byRequest map[string][]attachments.Attachment
}

func NewAttachmentsRepo() attachments.Repository {
	return &attachmentsRepo{
		byRequest: make(map[string][]attachments.Attachment),
	}
}

func (r *attachmentsRepo) Create(ctx context.Context, a attachments.Attachment) error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("attachment id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byRequest[a.RequestID] = append(r.byRequest[a.RequestID], a)
	return nil
}

func (r *attachmentsRepo) ListByRequest(ctx context.Context, requestID string) ([]attachments.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.byRequest[requestID]
	out := make([]attachments.Attachment, len(src))
	copy(out, src)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
