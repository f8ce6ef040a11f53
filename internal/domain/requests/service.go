package requests

import (
	"context"
	"fmt"
	"strings"
	"time"

	"concierium/internal/platform/logger"
	"concierium/internal/ports/auth"
	"concierium/internal/ports/notify"

	"github.com/google/uuid"
)

// UserDirectory resuelve el email del cliente para notificaciones.
// Interface local para no acoplar requests -> users.
type UserDirectory interface {
	EmailOf(ctx context.Context, userID string) (string, error)
}

type Service struct {
	repo     Repository
	users    UserDirectory
	notifier notify.Notifier
	log      logger.Logger
	now      func() time.Time

	// Timeout propio del dispatch de notificaciones: nunca en el camino
	// crítico de la transición.
	notifyTimeout time.Duration
}

func NewService(repo Repository, users UserDirectory, notifier notify.Notifier, log logger.Logger) *Service {
	if log == nil {
		log = logger.Noop()
	}
	return &Service{
		repo:          repo,
		users:         users,
		notifier:      notifier,
		log:           log,
		now:           time.Now,
		notifyTimeout: 5 * time.Second,
	}
}

type CreateInput struct {
	ServiceKind   string
	DestinationID *string
	CatalogID     *string
	StartDate     *time.Time
	EndDate       *time.Time
	Guests        *int
	BudgetUSD     *float64
	DietaryNotes  string
	Interests     []string
	Notes         string
}

func (s *Service) Create(ctx context.Context, clientID string, in CreateInput) (Request, error) {
	if strings.TrimSpace(clientID) == "" {
		return Request{}, ErrInvalidInput
	}
	kind, ok := ParseServiceKind(strings.TrimSpace(in.ServiceKind))
	if !ok {
		return Request{}, ErrInvalidInput
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return Request{}, ErrInvalidInput
	}

	now := s.now()
	r := Request{
		ID:            uuid.NewString(),
		ClientID:      clientID,
		ServiceKind:   kind,
		DestinationID: in.DestinationID,
		CatalogID:     in.CatalogID,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Guests:        in.Guests,
		BudgetUSD:     in.BudgetUSD,
		DietaryNotes:  strings.TrimSpace(in.DietaryNotes),
		Interests:     normalizeInterests(in.Interests),
		Notes:         strings.TrimSpace(in.Notes),
		CurrentStatus: StatusNew,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return Request{}, err
	}
	return r, nil
}

// GetForActor aplica visibilidad: un cliente solo ve lo suyo (lo demás es
// "not found", no "forbidden", para no filtrar existencia); un admin ve todo.
func (s *Service) GetForActor(ctx context.Context, actor auth.Claims, id string) (Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Request{}, ErrNotFound
	}
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if !auth.IsAdmin(actor.Role) && r.ClientID != actor.UserID {
		return Request{}, ErrNotFound
	}
	return r, nil
}

// UpdateContent reemplaza el payload descriptivo. Solo el cliente dueño y
// solo mientras la solicitud no esté en estado terminal.
func (s *Service) UpdateContent(ctx context.Context, actor auth.Claims, id string, in CreateInput) (Request, error) {
	r, err := s.GetForActor(ctx, actor, id)
	if err != nil {
		return Request{}, err
	}
	if r.ClientID != actor.UserID {
		return Request{}, ErrUnauthorized
	}
	if IsTerminal(r.CurrentStatus) {
		return Request{}, ErrUnauthorized
	}

	kind, ok := ParseServiceKind(strings.TrimSpace(in.ServiceKind))
	if !ok {
		return Request{}, ErrInvalidInput
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return Request{}, ErrInvalidInput
	}

	r.ServiceKind = kind
	r.DestinationID = in.DestinationID
	r.CatalogID = in.CatalogID
	r.StartDate = in.StartDate
	r.EndDate = in.EndDate
	r.Guests = in.Guests
	r.BudgetUSD = in.BudgetUSD
	r.DietaryNotes = strings.TrimSpace(in.DietaryNotes)
	r.Interests = normalizeInterests(in.Interests)
	r.Notes = strings.TrimSpace(in.Notes)
	r.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, r); err != nil {
		return Request{}, err
	}
	return r, nil
}

func (s *Service) ListByClient(ctx context.Context, clientID string, status Status) ([]Request, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByClient(ctx, clientID, status)
}

func (s *Service) List(ctx context.Context, status Status, limit int) ([]Request, error) {
	return s.repo.List(ctx, status, limit)
}

func (s *Service) History(ctx context.Context, actor auth.Claims, requestID string) ([]StatusHistoryEntry, error) {
	if _, err := s.GetForActor(ctx, actor, requestID); err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, requestID)
}

// TransitionResult devuelve el antes y el después al caller HTTP.
type TransitionResult struct {
	ID             string
	PreviousStatus Status
	NewStatus      Status
}

// Transition mueve la solicitud por la máquina de estados.
//
// Orden de checks: estado conocido, visibilidad, autorización del actor,
// legalidad del edge. Recién entonces se toca persistencia, con un update
// condicional (CAS sobre el estado observado) que escribe el historial en la
// misma operación atómica: si la transición es ilegal o pierde la carrera,
// no queda ningún registro.
func (s *Service) Transition(ctx context.Context, actor auth.Claims, requestID, toStatus, note string) (TransitionResult, error) {
	to, err := ParseStatus(strings.TrimSpace(toStatus))
	if err != nil {
		return TransitionResult{}, err
	}

	req, err := s.GetForActor(ctx, actor, requestID)
	if err != nil {
		return TransitionResult{}, err
	}
	from := req.CurrentStatus

	if !statusIn(to, AllowedTargets(actor, req)) {
		return TransitionResult{}, s.denyTransition(actor, req, to)
	}

	now := s.now()
	assign := ""
	if auth.IsAdmin(actor.Role) && req.AssignedAdminID == nil {
		assign = actor.UserID
	}

	ok, err := s.repo.UpdateStatus(ctx, StatusWrite{
		RequestID:      req.ID,
		ExpectedStatus: from,
		NewStatus:      to,
		AssignAdminID:  assign,
		Now:            now,
		Entry: StatusHistoryEntry{
			ID:         uuid.NewString(),
			RequestID:  req.ID,
			FromStatus: &from,
			ToStatus:   to,
			ChangedBy:  actor.UserID,
			Note:       strings.TrimSpace(note),
			CreatedAt:  now,
		},
	})
	if err != nil {
		return TransitionResult{}, err
	}
	if !ok {
		return TransitionResult{}, ErrConflict
	}

	s.log.Info("request status changed", map[string]any{
		"request_id": req.ID,
		"from":       string(from),
		"to":         string(to),
		"changed_by": actor.UserID,
	})

	// Notificación fuera del camino crítico: la transición ya es la fuente
	// de verdad, el correo es best-effort.
	go s.notifyStatusChange(req.ClientID, req.ID, from, to)

	return TransitionResult{ID: req.ID, PreviousStatus: from, NewStatus: to}, nil
}

// denyTransition clasifica el rechazo una vez que AllowedTargets dijo no.
func (s *Service) denyTransition(actor auth.Claims, req Request, to Status) error {
	if auth.IsAdmin(actor.Role) {
		return &IllegalTransitionError{From: req.CurrentStatus, To: to}
	}
	// Cliente dueño: puede pedir solo discarded; si lo pidió y aun así no
	// está permitido es porque el estado actual es terminal.
	if to == StatusDiscarded {
		return &IllegalTransitionError{From: req.CurrentStatus, To: to}
	}
	return ErrUnauthorized
}

func (s *Service) notifyStatusChange(clientID, requestID string, from, to Status) {
	if s.notifier == nil || s.users == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
	defer cancel()

	email, err := s.users.EmailOf(ctx, clientID)
	if err != nil || strings.TrimSpace(email) == "" {
		s.log.Warn("notify skipped: client email not resolved", map[string]any{
			"request_id": requestID,
			"client_id":  clientID,
		})
		return
	}

	subject := "Actualización de tu solicitud"
	body := fmt.Sprintf("Tu solicitud %s pasó de %s a %s.", requestID, from, to)

	if err := s.notifier.Send(ctx, email, subject, body); err != nil {
		s.log.Error("notify status change failed", map[string]any{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

func statusIn(s Status, in []Status) bool {
	for _, v := range in {
		if v == s {
			return true
		}
	}
	return false
}

func normalizeInterests(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, raw := range in {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
