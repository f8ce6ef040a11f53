package requests

import (
	"context"
	"time"
)

// Umbrales de atención acordados con operaciones. Son indicadores para el
// dashboard, no se aplican automáticamente.
const (
	SLAFirstAttention = 2 * time.Hour
	SLAProposal       = 48 * time.Hour
)

// SlaReport es una vista derivada y recomputable: sale siempre de Request +
// historial, sin estado mutable propio.
type SlaReport struct {
	RequestID string
	CreatedAt time.Time

	// Primer registro de historial después de la creación (por Seq, no por
	// reloj) y el registro que entró a proposal_sent. Nil si no ocurrieron.
	FirstChangeAt *time.Time
	ProposalAt    *time.Time

	BreachFirstAttention2h bool
	BreachProposal48h      bool
}

// BuildSlaReport computa los flags para una solicitud dado su historial
// ordenado por Seq. Función pura; now permite evaluar solicitudes aún
// pendientes.
func BuildSlaReport(req Request, history []StatusHistoryEntry, now time.Time) SlaReport {
	var firstChange, proposal *time.Time
	for i := range history {
		e := history[i]
		if firstChange == nil {
			t := e.CreatedAt
			firstChange = &t
		}
		if proposal == nil && e.ToStatus == StatusProposalSent {
			t := e.CreatedAt
			proposal = &t
		}
	}

	breachFirst, breachProposal := slaFlags(req.CreatedAt, firstChange, proposal, now)
	return SlaReport{
		RequestID:              req.ID,
		CreatedAt:              req.CreatedAt,
		FirstChangeAt:          firstChange,
		ProposalAt:             proposal,
		BreachFirstAttention2h: breachFirst,
		BreachProposal48h:      breachProposal,
	}
}

func slaFlags(createdAt time.Time, firstChangeAt, proposalAt *time.Time, now time.Time) (breachFirst, breachProposal bool) {
	firstRef := now
	if firstChangeAt != nil {
		firstRef = *firstChangeAt
	}
	breachFirst = firstRef.Sub(createdAt) > SLAFirstAttention

	proposalRef := now
	if proposalAt != nil {
		proposalRef = *proposalAt
	}
	breachProposal = proposalRef.Sub(createdAt) > SLAProposal

	return breachFirst, breachProposal
}

// SlaBreaches resuelve el historial de cada solicitud y computa su reporte.
func (s *Service) SlaBreaches(ctx context.Context, reqs []Request) ([]SlaReport, error) {
	now := s.now()
	out := make([]SlaReport, 0, len(reqs))
	for _, r := range reqs {
		history, err := s.repo.ListHistory(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, BuildSlaReport(r, history, now))
	}
	return out, nil
}
