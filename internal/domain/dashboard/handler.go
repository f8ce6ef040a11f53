package dashboard

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"concierium/internal/middleware"
	"concierium/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin)).
		Get("/admin/dashboard", adminDashboardHandler(svc))
	r.Get("/me/dashboard", clientDashboardHandler(svc))
}

type recentRow struct {
	ID          string    `json:"id"`
	ClientName  string    `json:"client_name,omitempty"`
	Service     string    `json:"service"`
	Destination string    `json:"destination"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type slaRow struct {
	RequestID              string     `json:"id"`
	CreatedAt              time.Time  `json:"created_at"`
	FirstChangeAt          *time.Time `json:"first_change_at"`
	ProposalAt             *time.Time `json:"proposal_at"`
	BreachFirstAttention2h bool       `json:"breach_first_attention_2h"`
	BreachProposal48h      bool       `json:"breach_proposal_48h"`
}

type adminDashboardResponse struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	Recent   []recentRow    `json:"recent"`
	Sla      []slaRow       `json:"sla"`
}

type clientDashboardResponse struct {
	ActiveCount            int         `json:"active_count"`
	LastID                 string      `json:"last_id,omitempty"`
	LastStatus             string      `json:"last_status,omitempty"`
	RecommendedDestination string      `json:"recommended_destination,omitempty"`
	Recent                 []recentRow `json:"recent"`
}

// @Summary Dashboard de administración
// @Router /admin/dashboard [get]
func adminDashboardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.AdminView(r.Context())
		if err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}

		byStatus := make(map[string]int, len(view.ByStatus))
		for k, v := range view.ByStatus {
			byStatus[string(k)] = v
		}

		sla := make([]slaRow, 0, len(view.Sla))
		for _, s := range view.Sla {
			sla = append(sla, slaRow{
				RequestID:              s.RequestID,
				CreatedAt:              s.CreatedAt,
				FirstChangeAt:          s.FirstChangeAt,
				ProposalAt:             s.ProposalAt,
				BreachFirstAttention2h: s.BreachFirstAttention2h,
				BreachProposal48h:      s.BreachProposal48h,
			})
		}

		writeJSON(w, http.StatusOK, adminDashboardResponse{
			Total:    view.Total,
			ByStatus: byStatus,
			Recent:   toRecentRows(view.Recent),
			Sla:      sla,
		})
	}
}

func clientDashboardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		view, err := svc.ClientView(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}

		writeJSON(w, http.StatusOK, clientDashboardResponse{
			ActiveCount:            view.ActiveCount,
			LastID:                 view.LastID,
			LastStatus:             string(view.LastStatus),
			RecommendedDestination: view.RecommendedDestination,
			Recent:                 toRecentRows(view.Recent),
		})
	}
}

func toRecentRows(in []RecentRequest) []recentRow {
	out := make([]recentRow, 0, len(in))
	for _, r := range in {
		out = append(out, recentRow{
			ID:          r.ID,
			ClientName:  r.ClientName,
			Service:     r.Service,
			Destination: r.Destination,
			Status:      string(r.Status),
			CreatedAt:   r.CreatedAt,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
