package requests

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"concierium/internal/middleware"
	"concierium/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Solicitudes (cliente dueño; admin puede leer)
	r.Route("/requests", func(rr chi.Router) {
		rr.Post("/", createRequestHandler(svc))
		rr.Get("/", listMyRequestsHandler(svc))
		rr.Get("/{requestID}", getRequestHandler(svc))
		rr.Patch("/{requestID}", updateRequestHandler(svc))
		rr.Post("/{requestID}/status", transitionHandler(svc))
		rr.Get("/{requestID}/history", historyHandler(svc))
	})

	// Vistas admin (el capability check del workflow vive en el servicio;
	// el middleware solo corta temprano los roles sin acceso).
	r.Route("/admin/requests", func(ar chi.Router) {
		ar.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin))
		ar.Get("/", adminListRequestsHandler(svc))
		ar.Post("/{requestID}/status", transitionHandler(svc))
	})
}

type requestPayload struct {
	ServiceKind   string   `json:"service_kind"`
	DestinationID *string  `json:"destination_id"`
	CatalogID     *string  `json:"catalog_id"`
	StartDate     string   `json:"start_date"` // YYYY-MM-DD opcional
	EndDate       string   `json:"end_date"`   // YYYY-MM-DD opcional
	Guests        *int     `json:"guests"`
	BudgetUSD     *float64 `json:"budget_usd"`
	DietaryNotes  string   `json:"dietary_notes"`
	Interests     []string `json:"interests"`
	Notes         string   `json:"notes"`
}

type requestResponse struct {
	ID              string     `json:"id"`
	ClientID        string     `json:"client_id"`
	ServiceKind     string     `json:"service_kind"`
	DestinationID   *string    `json:"destination_id,omitempty"`
	CatalogID       *string    `json:"catalog_id,omitempty"`
	StartDate       *string    `json:"start_date,omitempty"`
	EndDate         *string    `json:"end_date,omitempty"`
	Guests          *int       `json:"guests,omitempty"`
	BudgetUSD       *float64   `json:"budget_usd,omitempty"`
	DietaryNotes    string     `json:"dietary_notes,omitempty"`
	Interests       []string   `json:"interests,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CurrentStatus   string     `json:"current_status"`
	AssignedAdminID *string    `json:"assigned_admin_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type transitionRequest struct {
	ToStatus string `json:"to_status"`
	Note     string `json:"note"`
}

type transitionResponse struct {
	ID             string `json:"id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
}

type historyEntryResponse struct {
	ID         string    `json:"id"`
	Seq        int64     `json:"seq"`
	FromStatus *string   `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedBy  string    `json:"changed_by"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// @Summary Crear solicitud de servicio
// @Router /requests [post]
func createRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req requestPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in, err := toCreateInput(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		created, err := svc.Create(r.Context(), claims.UserID, in)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toRequestResponse(created))
	}
}

func listMyRequestsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		status, err := optionalStatus(r.URL.Query().Get("status"))
		if err != nil {
			http.Error(w, "invalid status filter", http.StatusBadRequest)
			return
		}

		items, err := svc.ListByClient(r.Context(), claims.UserID, status)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRequestResponses(items))
	}
}

func getRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		item, err := svc.GetForActor(r.Context(), claims, chi.URLParam(r, "requestID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRequestResponse(item))
	}
}

func updateRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req requestPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in, err := toCreateInput(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		updated, err := svc.UpdateContent(r.Context(), claims, chi.URLParam(r, "requestID"), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRequestResponse(updated))
	}
}

// @Summary Transicionar estado de una solicitud
// @Router /requests/{requestID}/status [post]
func transitionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req transitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.ToStatus) == "" {
			http.Error(w, "to_status required", http.StatusBadRequest)
			return
		}

		res, err := svc.Transition(r.Context(), claims, chi.URLParam(r, "requestID"), req.ToStatus, req.Note)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, transitionResponse{
			ID:             res.ID,
			PreviousStatus: string(res.PreviousStatus),
			NewStatus:      string(res.NewStatus),
		})
	}
}

func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		entries, err := svc.History(r.Context(), claims, chi.URLParam(r, "requestID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]historyEntryResponse, 0, len(entries))
		for _, e := range entries {
			var from *string
			if e.FromStatus != nil {
				s := string(*e.FromStatus)
				from = &s
			}
			out = append(out, historyEntryResponse{
				ID:         e.ID,
				Seq:        e.Seq,
				FromStatus: from,
				ToStatus:   string(e.ToStatus),
				ChangedBy:  e.ChangedBy,
				Note:       e.Note,
				CreatedAt:  e.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminListRequestsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := optionalStatus(r.URL.Query().Get("status"))
		if err != nil {
			http.Error(w, "invalid status filter", http.StatusBadRequest)
			return
		}

		limit := 50
		if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			if n > 200 {
				n = 200
			}
			limit = n
		}

		items, err := svc.List(r.Context(), status, limit)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRequestResponses(items))
	}
}

func toCreateInput(req requestPayload) (CreateInput, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return CreateInput{}, errors.New("start_date must be YYYY-MM-DD")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return CreateInput{}, errors.New("end_date must be YYYY-MM-DD")
	}
	return CreateInput{
		ServiceKind:   req.ServiceKind,
		DestinationID: req.DestinationID,
		CatalogID:     req.CatalogID,
		StartDate:     start,
		EndDate:       end,
		Guests:        req.Guests,
		BudgetUSD:     req.BudgetUSD,
		DietaryNotes:  req.DietaryNotes,
		Interests:     req.Interests,
		Notes:         req.Notes,
	}, nil
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optionalStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	return ParseStatus(raw)
}

func toRequestResponse(r Request) requestResponse {
	return requestResponse{
		ID:              r.ID,
		ClientID:        r.ClientID,
		ServiceKind:     string(r.ServiceKind),
		DestinationID:   r.DestinationID,
		CatalogID:       r.CatalogID,
		StartDate:       formatDate(r.StartDate),
		EndDate:         formatDate(r.EndDate),
		Guests:          r.Guests,
		BudgetUSD:       r.BudgetUSD,
		DietaryNotes:    r.DietaryNotes,
		Interests:       r.Interests,
		Notes:           r.Notes,
		CurrentStatus:   string(r.CurrentStatus),
		AssignedAdminID: r.AssignedAdminID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toRequestResponses(items []Request) []requestResponse {
	out := make([]requestResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toRequestResponse(it))
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

// writeDomainError mapea la taxonomía del dominio a HTTP. Los errores de
// persistencia (conectividad) no se confunden con reglas de negocio: todo lo
// no tipado termina en 503.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case IsIllegalTransition(err), errors.Is(err, ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "request not found", http.StatusNotFound)
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
