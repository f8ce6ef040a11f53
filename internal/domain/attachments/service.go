package attachments

import (
	"context"
	"errors"
	"strings"
	"time"

	"concierium/internal/domain/requests"
	"concierium/internal/ports/auth"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// RequestAccess resuelve la solicitud aplicando visibilidad por actor.
// Lo implementa requests.Service.
type RequestAccess interface {
	GetForActor(ctx context.Context, actor auth.Claims, id string) (requests.Request, error)
}

type Service struct {
	repo     Repository
	requests RequestAccess
	now      func() time.Time
}

func NewService(repo Repository, reqs RequestAccess) *Service {
	return &Service{
		repo:     repo,
		requests: reqs,
		now:      time.Now,
	}
}

type AddInput struct {
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageURL string
}

// Add registra los metadatos de un archivo subido a una solicitud visible
// para el actor.
func (s *Service) Add(ctx context.Context, actor auth.Claims, requestID string, in AddInput) (Attachment, error) {
	if strings.TrimSpace(in.FileName) == "" || in.SizeBytes < 0 {
		return Attachment{}, ErrInvalidInput
	}

	req, err := s.requests.GetForActor(ctx, actor, requestID)
	if err != nil {
		return Attachment{}, err
	}

	a := Attachment{
		ID:         uuid.NewString(),
		RequestID:  req.ID,
		FileName:   strings.TrimSpace(in.FileName),
		MimeType:   strings.TrimSpace(in.MimeType),
		SizeBytes:  in.SizeBytes,
		StorageURL: strings.TrimSpace(in.StorageURL),
		UploadedBy: actor.UserID,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Attachment{}, err
	}
	return a, nil
}

func (s *Service) ListByRequest(ctx context.Context, actor auth.Claims, requestID string) ([]Attachment, error) {
	req, err := s.requests.GetForActor(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByRequest(ctx, req.ID)
}
