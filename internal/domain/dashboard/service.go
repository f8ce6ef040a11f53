package dashboard

import (
	"context"
	"strings"
	"time"

	"concierium/internal/domain/requests"
)

// Placeholder de display cuando una referencia no resuelve (igual que los
// COALESCE de las vistas originales).
const emptyLabel = "—"

// RequestSource la implementa requests.Service.
type RequestSource interface {
	List(ctx context.Context, status requests.Status, limit int) ([]requests.Request, error)
	ListByClient(ctx context.Context, clientID string, status requests.Status) ([]requests.Request, error)
	SlaBreaches(ctx context.Context, reqs []requests.Request) ([]requests.SlaReport, error)
}

// UserDirectory la implementa users.Service.
type UserDirectory interface {
	NameOf(ctx context.Context, userID string) (string, error)
}

// CatalogDirectory la implementa catalog.Service.
type CatalogDirectory interface {
	NameOfDestination(ctx context.Context, id string) (string, error)
	NameOfItem(ctx context.Context, id string) (string, error)
}

// Service arma vistas derivadas de solo lectura. Ninguna muta estado: todo
// es proyección de lo persistido al momento del read.
type Service struct {
	requests RequestSource
	users    UserDirectory
	catalog  CatalogDirectory
}

func NewService(reqs RequestSource, users UserDirectory, cat CatalogDirectory) *Service {
	return &Service{
		requests: reqs,
		users:    users,
		catalog:  cat,
	}
}

// RecentRequest es una fila denormalizada para la tabla del dashboard.
type RecentRequest struct {
	ID          string
	ClientName  string
	Service     string
	Destination string
	Status      requests.Status
	CreatedAt   time.Time
}

type AdminView struct {
	Total    int
	ByStatus map[requests.Status]int
	Recent   []RecentRequest
	Sla      []requests.SlaReport
}

const (
	recentLimit = 10
	slaLimit    = 10
)

func (s *Service) AdminView(ctx context.Context) (AdminView, error) {
	all, err := s.requests.List(ctx, "", 0)
	if err != nil {
		return AdminView{}, err
	}

	byStatus := make(map[requests.Status]int)
	for _, r := range all {
		byStatus[r.CurrentStatus]++
	}

	// List viene ordenado por created_at desc.
	recent := all
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	rows := make([]RecentRequest, 0, len(recent))
	for _, r := range recent {
		rows = append(rows, RecentRequest{
			ID:          r.ID,
			ClientName:  s.clientName(ctx, r.ClientID),
			Service:     s.serviceLabel(ctx, r),
			Destination: s.destinationName(ctx, r.DestinationID),
			Status:      r.CurrentStatus,
			CreatedAt:   r.CreatedAt,
		})
	}

	reports, err := s.requests.SlaBreaches(ctx, all)
	if err != nil {
		return AdminView{}, err
	}
	breaches := make([]requests.SlaReport, 0)
	for _, rep := range reports {
		if !rep.BreachFirstAttention2h && !rep.BreachProposal48h {
			continue
		}
		breaches = append(breaches, rep)
		if len(breaches) == slaLimit {
			break
		}
	}

	return AdminView{
		Total:    len(all),
		ByStatus: byStatus,
		Recent:   rows,
		Sla:      breaches,
	}, nil
}

type ClientView struct {
	ActiveCount int
	LastID      string
	LastStatus  requests.Status

	// Sugerencia simple: el último destino usado por el cliente.
	RecommendedDestination string

	Recent []RecentRequest
}

const clientRecentLimit = 5

func (s *Service) ClientView(ctx context.Context, clientID string) (ClientView, error) {
	reqs, err := s.requests.ListByClient(ctx, clientID, "")
	if err != nil {
		return ClientView{}, err
	}

	view := ClientView{}

	var lastUpdated time.Time
	for _, r := range reqs {
		if !requests.IsTerminal(r.CurrentStatus) {
			view.ActiveCount++
		}
		if r.UpdatedAt.After(lastUpdated) {
			lastUpdated = r.UpdatedAt
			view.LastID = r.ID
			view.LastStatus = r.CurrentStatus
		}
	}

	for _, r := range reqs {
		if r.DestinationID == nil {
			continue
		}
		if name := s.destinationName(ctx, r.DestinationID); name != emptyLabel {
			view.RecommendedDestination = name
			break
		}
	}

	recent := reqs
	if len(recent) > clientRecentLimit {
		recent = recent[:clientRecentLimit]
	}
	for _, r := range recent {
		view.Recent = append(view.Recent, RecentRequest{
			ID:          r.ID,
			Service:     s.serviceLabel(ctx, r),
			Destination: s.destinationName(ctx, r.DestinationID),
			Status:      r.CurrentStatus,
			CreatedAt:   r.CreatedAt,
		})
	}

	return view, nil
}

func (s *Service) clientName(ctx context.Context, userID string) string {
	if s.users == nil {
		return emptyLabel
	}
	name, err := s.users.NameOf(ctx, userID)
	if err != nil || strings.TrimSpace(name) == "" {
		return emptyLabel
	}
	return name
}

func (s *Service) serviceLabel(ctx context.Context, r requests.Request) string {
	if r.CatalogID != nil && s.catalog != nil {
		if name, err := s.catalog.NameOfItem(ctx, *r.CatalogID); err == nil && name != "" {
			return name
		}
	}
	return string(r.ServiceKind)
}

func (s *Service) destinationName(ctx context.Context, id *string) string {
	if id == nil || s.catalog == nil {
		return emptyLabel
	}
	name, err := s.catalog.NameOfDestination(ctx, *id)
	if err != nil || strings.TrimSpace(name) == "" {
		return emptyLabel
	}
	return name
}
