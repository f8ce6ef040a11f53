package requests

import "concierium/internal/ports/auth"

// Status es el valor de la máquina de estados de una solicitud.
// @Enum new, curation, proposal_sent, confirmed, closed, discarded
type Status string

const (
	StatusNew          Status = "new"
	StatusCuration     Status = "curation"
	StatusProposalSent Status = "proposal_sent"
	StatusConfirmed    Status = "confirmed"
	StatusClosed       Status = "closed"
	StatusDiscarded    Status = "discarded"
)

// ParseStatus valida un estado recibido por wire. Cualquier otro string se
// rechaza antes de llegar a persistencia.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusCuration, StatusProposalSent, StatusConfirmed, StatusClosed, StatusDiscarded:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// legalEdges es la única tabla de transiciones permitidas. Todo write path
// (servicio, repos, replay) consulta esta tabla; no hay checks duplicados.
// Las auto-transiciones no están en la tabla a propósito: un update no-op
// debe fallar, no generar historial espurio.
var legalEdges = map[Status][]Status{
	StatusNew:          {StatusCuration, StatusDiscarded},
	StatusCuration:     {StatusProposalSent, StatusDiscarded},
	StatusProposalSent: {StatusConfirmed, StatusDiscarded},
	StatusConfirmed:    {StatusClosed, StatusDiscarded},
	StatusClosed:       nil,
	StatusDiscarded:    nil,
}

// CanTransition indica si el edge from->to está permitido.
func CanTransition(from, to Status) bool {
	for _, t := range legalEdges[from] {
		if t == to {
			return true
		}
	}
	return false
}

// NextStatuses devuelve los destinos legales desde from (nil si terminal).
func NextStatuses(from Status) []Status {
	edges := legalEdges[from]
	if len(edges) == 0 {
		return nil
	}
	out := make([]Status, len(edges))
	copy(out, edges)
	return out
}

// IsTerminal indica si el estado no admite más transiciones.
func IsTerminal(s Status) bool {
	return len(legalEdges[s]) == 0
}

// AllowedTargets es el único punto de decisión de autorización del workflow:
// dado el actor y la solicitud, devuelve el subconjunto de estados destino
// que puede pedir. Vacío = no puede transicionar nada.
//   - admin/superadmin: cualquier edge legal desde el estado actual.
//   - cliente dueño: solo discarded (cancelación), desde estados no terminales.
//   - cualquier otro: nada.
func AllowedTargets(actor auth.Claims, req Request) []Status {
	if auth.IsAdmin(actor.Role) {
		return NextStatuses(req.CurrentStatus)
	}
	if actor.UserID != "" && actor.UserID == req.ClientID {
		if CanTransition(req.CurrentStatus, StatusDiscarded) {
			return []Status{StatusDiscarded}
		}
		return nil
	}
	return nil
}

// ReplayHistory recorre el historial ordenado por Seq y verifica que forme
// un camino válido en el grafo partiendo de "new". Devuelve el estado final.
func ReplayHistory(entries []StatusHistoryEntry) (Status, error) {
	cur := StatusNew
	for _, e := range entries {
		if e.FromStatus != nil && *e.FromStatus != cur {
			return cur, &IllegalTransitionError{From: *e.FromStatus, To: e.ToStatus}
		}
		if !CanTransition(cur, e.ToStatus) {
			return cur, &IllegalTransitionError{From: cur, To: e.ToStatus}
		}
		cur = e.ToStatus
	}
	return cur, nil
}
