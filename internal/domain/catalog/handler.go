package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"concierium/internal/middleware"
	"concierium/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Listados públicos (sin auth): solo activos, para armar el formulario
	// de solicitud en la web.
	r.Get("/public/destinations", listDestinationsHandler(svc, true))
	r.Get("/public/services", listItemsHandler(svc, true))

	r.Route("/admin", func(ar chi.Router) {
		ar.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin))

		ar.Get("/destinations", listDestinationsHandler(svc, false))
		ar.Post("/destinations", upsertDestinationHandler(svc))

		ar.Get("/providers", listProvidersHandler(svc))
		ar.Post("/providers", upsertProviderHandler(svc))

		ar.Get("/services", listItemsHandler(svc, false))
		ar.Post("/services", upsertItemHandler(svc))
	})
}

type destinationPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Country   string `json:"country"`
	Region    string `json:"region"`
	IsActive  *bool  `json:"is_active"`
	SortOrder *int   `json:"sort_order"`
}

type destinationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country,omitempty"`
	Region    string    `json:"region,omitempty"`
	IsActive  bool      `json:"is_active"`
	SortOrder int       `json:"sort_order"`
	UpdatedAt time.Time `json:"updated_at"`
}

type providerPayload struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Rating   *float64 `json:"rating"`
	IsActive *bool    `json:"is_active"`
}

type providerResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type,omitempty"`
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
	IsActive bool     `json:"is_active"`
}

type itemPayload struct {
	ID            string   `json:"id"`
	ServiceKind   string   `json:"service_kind"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	BasePriceUSD  *float64 `json:"base_price_usd"`
	DestinationID *string  `json:"destination_id"`
	ProviderID    *string  `json:"provider_id"`
	IsActive      *bool    `json:"is_active"`
}

type itemResponse struct {
	ID            string   `json:"id"`
	ServiceKind   string   `json:"service_kind"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	BasePriceUSD  *float64 `json:"base_price_usd,omitempty"`
	DestinationID *string  `json:"destination_id,omitempty"`
	ProviderID    *string  `json:"provider_id,omitempty"`
	IsActive      bool     `json:"is_active"`
}

func listDestinationsHandler(svc *Service, onlyActive bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListDestinations(r.Context(), onlyActive)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		out := make([]destinationResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDestinationResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// @Summary Crear o actualizar destino
// @Router /admin/destinations [post]
func upsertDestinationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req destinationPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		d, err := svc.UpsertDestination(r.Context(), DestinationInput{
			ID:        req.ID,
			Name:      req.Name,
			Country:   req.Country,
			Region:    req.Region,
			IsActive:  req.IsActive,
			SortOrder: req.SortOrder,
		})
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDestinationResponse(d))
	}
}

func listProvidersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListProviders(r.Context(), false)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		out := make([]providerResponse, 0, len(items))
		for _, p := range items {
			out = append(out, providerResponse{
				ID:       p.ID,
				Name:     p.Name,
				Type:     p.Type,
				Email:    p.Email,
				Phone:    p.Phone,
				Rating:   p.Rating,
				IsActive: p.IsActive,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func upsertProviderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req providerPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		p, err := svc.UpsertProvider(r.Context(), ProviderInput{
			ID:       req.ID,
			Name:     req.Name,
			Type:     req.Type,
			Email:    req.Email,
			Phone:    req.Phone,
			Rating:   req.Rating,
			IsActive: req.IsActive,
		})
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, providerResponse{
			ID:       p.ID,
			Name:     p.Name,
			Type:     p.Type,
			Email:    p.Email,
			Phone:    p.Phone,
			Rating:   p.Rating,
			IsActive: p.IsActive,
		})
	}
}

func listItemsHandler(svc *Service, onlyActive bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListItems(r.Context(), onlyActive)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		out := make([]itemResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toItemResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func upsertItemHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req itemPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		it, err := svc.UpsertItem(r.Context(), ItemInput{
			ID:            req.ID,
			ServiceKind:   req.ServiceKind,
			Name:          req.Name,
			Description:   req.Description,
			BasePriceUSD:  req.BasePriceUSD,
			DestinationID: req.DestinationID,
			ProviderID:    req.ProviderID,
			IsActive:      req.IsActive,
		})
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toItemResponse(it))
	}
}

func toDestinationResponse(d Destination) destinationResponse {
	return destinationResponse{
		ID:        d.ID,
		Name:      d.Name,
		Country:   d.Country,
		Region:    d.Region,
		IsActive:  d.IsActive,
		SortOrder: d.SortOrder,
		UpdatedAt: d.UpdatedAt,
	}
}

func toItemResponse(it Item) itemResponse {
	return itemResponse{
		ID:            it.ID,
		ServiceKind:   it.ServiceKind,
		Name:          it.Name,
		Description:   it.Description,
		BasePriceUSD:  it.BasePriceUSD,
		DestinationID: it.DestinationID,
		ProviderID:    it.ProviderID,
		IsActive:      it.IsActive,
	}
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
