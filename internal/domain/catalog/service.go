package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

const defaultSortOrder = 100

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type DestinationInput struct {
	ID        string // vacío = crear
	Name      string
	Country   string
	Region    string
	IsActive  *bool
	SortOrder *int
}

func (s *Service) UpsertDestination(ctx context.Context, in DestinationInput) (Destination, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Destination{}, ErrInvalidInput
	}

	now := s.now()

	if id := strings.TrimSpace(in.ID); id != "" {
		d, err := s.repo.GetDestination(ctx, id)
		if err != nil {
			return Destination{}, err
		}
		d.Name = name
		d.Country = strings.TrimSpace(in.Country)
		d.Region = strings.TrimSpace(in.Region)
		if in.IsActive != nil {
			d.IsActive = *in.IsActive
		}
		if in.SortOrder != nil {
			d.SortOrder = *in.SortOrder
		}
		d.UpdatedAt = now
		if err := s.repo.SaveDestination(ctx, d); err != nil {
			return Destination{}, err
		}
		return d, nil
	}

	d := Destination{
		ID:        uuid.NewString(),
		Name:      name,
		Country:   strings.TrimSpace(in.Country),
		Region:    strings.TrimSpace(in.Region),
		IsActive:  true,
		SortOrder: defaultSortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.IsActive != nil {
		d.IsActive = *in.IsActive
	}
	if in.SortOrder != nil {
		d.SortOrder = *in.SortOrder
	}
	if err := s.repo.SaveDestination(ctx, d); err != nil {
		return Destination{}, err
	}
	return d, nil
}

func (s *Service) ListDestinations(ctx context.Context, onlyActive bool) ([]Destination, error) {
	return s.repo.ListDestinations(ctx, onlyActive)
}

// NameOfDestination existe para denormalizar vistas (dashboard) sin acoplar
// ese módulo al modelo completo.
func (s *Service) NameOfDestination(ctx context.Context, id string) (string, error) {
	d, err := s.repo.GetDestination(ctx, strings.TrimSpace(id))
	if err != nil {
		return "", err
	}
	return d.Name, nil
}

type ProviderInput struct {
	ID       string
	Name     string
	Type     string
	Email    string
	Phone    string
	Rating   *float64
	IsActive *bool
}

func (s *Service) UpsertProvider(ctx context.Context, in ProviderInput) (Provider, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Provider{}, ErrInvalidInput
	}
	if in.Rating != nil && (*in.Rating < 0 || *in.Rating > 5) {
		return Provider{}, ErrInvalidInput
	}

	now := s.now()

	if id := strings.TrimSpace(in.ID); id != "" {
		p, err := s.repo.GetProvider(ctx, id)
		if err != nil {
			return Provider{}, err
		}
		p.Name = name
		p.Type = strings.TrimSpace(in.Type)
		p.Email = strings.TrimSpace(in.Email)
		p.Phone = strings.TrimSpace(in.Phone)
		p.Rating = in.Rating
		if in.IsActive != nil {
			p.IsActive = *in.IsActive
		}
		p.UpdatedAt = now
		if err := s.repo.SaveProvider(ctx, p); err != nil {
			return Provider{}, err
		}
		return p, nil
	}

	p := Provider{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      strings.TrimSpace(in.Type),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Rating:    in.Rating,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := s.repo.SaveProvider(ctx, p); err != nil {
		return Provider{}, err
	}
	return p, nil
}

func (s *Service) ListProviders(ctx context.Context, onlyActive bool) ([]Provider, error) {
	return s.repo.ListProviders(ctx, onlyActive)
}

type ItemInput struct {
	ID            string
	ServiceKind   string
	Name          string
	Description   string
	BasePriceUSD  *float64
	DestinationID *string
	ProviderID    *string
	IsActive      *bool
}

func (s *Service) UpsertItem(ctx context.Context, in ItemInput) (Item, error) {
	name := strings.TrimSpace(in.Name)
	kind := strings.TrimSpace(in.ServiceKind)
	if name == "" || kind == "" {
		return Item{}, ErrInvalidInput
	}

	now := s.now()

	if id := strings.TrimSpace(in.ID); id != "" {
		it, err := s.repo.GetItem(ctx, id)
		if err != nil {
			return Item{}, err
		}
		it.ServiceKind = kind
		it.Name = name
		it.Description = strings.TrimSpace(in.Description)
		it.BasePriceUSD = in.BasePriceUSD
		it.DestinationID = in.DestinationID
		it.ProviderID = in.ProviderID
		if in.IsActive != nil {
			it.IsActive = *in.IsActive
		}
		it.UpdatedAt = now
		if err := s.repo.SaveItem(ctx, it); err != nil {
			return Item{}, err
		}
		return it, nil
	}

	it := Item{
		ID:            uuid.NewString(),
		ServiceKind:   kind,
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		BasePriceUSD:  in.BasePriceUSD,
		DestinationID: in.DestinationID,
		ProviderID:    in.ProviderID,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.IsActive != nil {
		it.IsActive = *in.IsActive
	}
	if err := s.repo.SaveItem(ctx, it); err != nil {
		return Item{}, err
	}
	return it, nil
}

func (s *Service) ListItems(ctx context.Context, onlyActive bool) ([]Item, error) {
	return s.repo.ListItems(ctx, onlyActive)
}

func (s *Service) NameOfItem(ctx context.Context, id string) (string, error) {
	it, err := s.repo.GetItem(ctx, strings.TrimSpace(id))
	if err != nil {
		return "", err
	}
	return it.Name, nil
}
