package requests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"concierium/internal/ports/auth"
)

// testRepo implementa Repository en memoria con el mismo contrato CAS que
// los adapters reales.
type testRepo struct {
	mu      sync.Mutex
	byID    map[string]Request
	history map[string][]StatusHistoryEntry
	seq     map[string]int64
}

func newTestRepo() *testRepo {
	return &testRepo{
		byID:    make(map[string]Request),
		history: make(map[string][]StatusHistoryEntry),
		seq:     make(map[string]int64),
	}
}

func (r *testRepo) Create(ctx context.Context, req Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[req.ID] = req
	return nil
}

func (r *testRepo) Update(ctx context.Context, req Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[req.ID]
	if !ok {
		return ErrNotFound
	}
	req.CurrentStatus = stored.CurrentStatus
	req.AssignedAdminID = stored.AssignedAdminID
	r.byID[req.ID] = req
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (r *testRepo) ListByClient(ctx context.Context, clientID string, status Status) ([]Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Request{}
	for _, req := range r.byID {
		if req.ClientID != clientID {
			continue
		}
		if status != "" && req.CurrentStatus != status {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func (r *testRepo) List(ctx context.Context, status Status, limit int) ([]Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Request{}
	for _, req := range r.byID {
		if status != "" && req.CurrentStatus != status {
			continue
		}
		out = append(out, req)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *testRepo) UpdateStatus(ctx context.Context, w StatusWrite) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[w.RequestID]
	if !ok {
		return false, ErrNotFound
	}
	if req.CurrentStatus != w.ExpectedStatus {
		return false, nil
	}

	req.CurrentStatus = w.NewStatus
	req.UpdatedAt = w.Now
	if w.AssignAdminID != "" && req.AssignedAdminID == nil {
		admin := w.AssignAdminID
		req.AssignedAdminID = &admin
	}
	r.byID[w.RequestID] = req

	r.seq[w.RequestID]++
	entry := w.Entry
	entry.Seq = r.seq[w.RequestID]
	r.history[w.RequestID] = append(r.history[w.RequestID], entry)
	return true, nil
}

func (r *testRepo) ListHistory(ctx context.Context, requestID string) ([]StatusHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.history[requestID]
	out := make([]StatusHistoryEntry, len(src))
	copy(out, src)
	return out, nil
}

type testDirectory struct {
	emails map[string]string
}

func (d *testDirectory) EmailOf(ctx context.Context, userID string) (string, error) {
	email, ok := d.emails[userID]
	if !ok {
		return "", errors.New("no email")
	}
	return email, nil
}

type sentMail struct {
	to, subject, body string
}

type testNotifier struct {
	ch chan sentMail
}

func (n *testNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.ch <- sentMail{to: to, subject: subject, body: body}
	return nil
}

func newTestService(repo *testRepo) *Service {
	svc := NewService(repo, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

var (
	clientActor = auth.Claims{UserID: "client-1", Role: auth.RoleClient}
	adminActor  = auth.Claims{UserID: "admin-1", Role: auth.RoleAdmin}
)

func mustCreate(t *testing.T, svc *Service) Request {
	t.Helper()
	req, err := svc.Create(context.Background(), clientActor.UserID, CreateInput{
		ServiceKind: "lodging",
		Notes:       "test",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return req
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", CreateInput{ServiceKind: "tour"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty client: got %v", err)
	}
	if _, err := svc.Create(ctx, "c1", CreateInput{ServiceKind: "spa"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown kind: got %v", err)
	}

	start := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Create(ctx, "c1", CreateInput{ServiceKind: "tour", StartDate: &start, EndDate: &end}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("end before start: got %v", err)
	}
}

func TestCreate_StartsInNewWithoutHistory(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	req := mustCreate(t, svc)
	if req.CurrentStatus != StatusNew {
		t.Fatalf("status = %s, want new", req.CurrentStatus)
	}
	history, _ := repo.ListHistory(context.Background(), req.ID)
	if len(history) != 0 {
		t.Fatalf("creation must not write history, got %d entries", len(history))
	}
}

func TestCreate_DeduplicatesInterests(t *testing.T) {
	svc := newTestService(newTestRepo())
	req, err := svc.Create(context.Background(), "c1", CreateInput{
		ServiceKind: "tour",
		Interests:   []string{" wine ", "wine", "", "hiking"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(req.Interests) != 2 || req.Interests[0] != "wine" || req.Interests[1] != "hiking" {
		t.Fatalf("interests = %v", req.Interests)
	}
}

func TestGetForActor_Visibility(t *testing.T) {
	svc := newTestService(newTestRepo())
	req := mustCreate(t, svc)
	ctx := context.Background()

	if _, err := svc.GetForActor(ctx, clientActor, req.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := svc.GetForActor(ctx, adminActor, req.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}

	// Otro cliente recibe not found, no forbidden: no filtramos existencia.
	other := auth.Claims{UserID: "client-2", Role: auth.RoleClient}
	if _, err := svc.GetForActor(ctx, other, req.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign get: got %v, want not found", err)
	}
}

func TestTransition_FullLifecycle(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	req := mustCreate(t, svc)
	ctx := context.Background()

	steps := []struct {
		actor auth.Claims
		to    Status
	}{
		{adminActor, StatusCuration},
		{adminActor, StatusProposalSent},
		{adminActor, StatusConfirmed},
		{adminActor, StatusClosed},
	}
	for i, step := range steps {
		res, err := svc.Transition(ctx, step.actor, req.ID, string(step.to), "")
		if err != nil {
			t.Fatalf("step %d to %s: %v", i, step.to, err)
		}
		if res.NewStatus != step.to {
			t.Fatalf("step %d: new status = %s, want %s", i, res.NewStatus, step.to)
		}
	}

	history, _ := repo.ListHistory(ctx, req.ID)
	if len(history) != len(steps) {
		t.Fatalf("history entries = %d, want %d", len(history), len(steps))
	}
	for i, e := range history {
		if e.Seq != int64(i+1) {
			t.Fatalf("entry %d: seq = %d, want %d", i, e.Seq, i+1)
		}
	}
	if final, err := ReplayHistory(history); err != nil || final != StatusClosed {
		t.Fatalf("replay = (%s, %v), want closed", final, err)
	}
}

func TestTransition_FirstTouchAssignsAdmin(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	req := mustCreate(t, svc)
	ctx := context.Background()

	if _, err := svc.Transition(ctx, adminActor, req.ID, "curation", ""); err != nil {
		t.Fatalf("transition: %v", err)
	}
	stored, _ := repo.GetByID(ctx, req.ID)
	if stored.AssignedAdminID == nil || *stored.AssignedAdminID != adminActor.UserID {
		t.Fatalf("assigned admin = %v, want %s", stored.AssignedAdminID, adminActor.UserID)
	}

	// Otro admin mueve después: la asignación no se pisa.
	secondAdmin := auth.Claims{UserID: "admin-2", Role: auth.RoleAdmin}
	if _, err := svc.Transition(ctx, secondAdmin, req.ID, "proposal_sent", ""); err != nil {
		t.Fatalf("second transition: %v", err)
	}
	stored, _ = repo.GetByID(ctx, req.ID)
	if *stored.AssignedAdminID != adminActor.UserID {
		t.Fatalf("assignment overwritten: %s", *stored.AssignedAdminID)
	}
}

func TestTransition_IllegalEdgeWritesNothing(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	req := mustCreate(t, svc)
	ctx := context.Background()

	_, err := svc.Transition(ctx, adminActor, req.ID, "confirmed", "")
	if !IsIllegalTransition(err) {
		t.Fatalf("expected illegal transition, got %v", err)
	}

	stored, _ := repo.GetByID(ctx, req.ID)
	if stored.CurrentStatus != StatusNew {
		t.Fatalf("status mutated to %s on illegal transition", stored.CurrentStatus)
	}
	if history, _ := repo.ListHistory(ctx, req.ID); len(history) != 0 {
		t.Fatalf("history written on illegal transition: %d entries", len(history))
	}
}

func TestTransition_ClientAuthorization(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	req := mustCreate(t, svc)
	ctx := context.Background()

	// El cliente no puede mover el workflow hacia adelante.
	if _, err := svc.Transition(ctx, clientActor, req.ID, "curation", ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("client to curation: got %v, want unauthorized", err)
	}

	// Sí puede descartar lo suyo, incluso después de confirmada.
	for _, to := range []string{"curation", "proposal_sent", "confirmed"} {
		if _, err := svc.Transition(ctx, adminActor, req.ID, to, ""); err != nil {
			t.Fatalf("setup transition to %s: %v", to, err)
		}
	}
	if _, err := svc.Transition(ctx, clientActor, req.ID, "discarded", "cambio de planes"); err != nil {
		t.Fatalf("client discard after confirmed: %v", err)
	}

	// Desde terminal, pedir discarded de nuevo es edge ilegal, no authz.
	_, err := svc.Transition(ctx, clientActor, req.ID, "discarded", "")
	if !IsIllegalTransition(err) {
		t.Fatalf("discard from terminal: got %v, want illegal transition", err)
	}
}

func TestTransition_UnknownStatusRejectedBeforeReads(t *testing.T) {
	svc := newTestService(newTestRepo())
	_, err := svc.Transition(context.Background(), adminActor, "whatever", "archived", "")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("got %v, want invalid status", err)
	}
}

func TestTransition_ConcurrentLosesWithConflict(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	req := mustCreate(t, svc)
	ctx := context.Background()

	// Dos admins disparan la misma transición desde el estado observado:
	// exactamente uno gana, el otro recibe conflicto y no duplica historial.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Transition(ctx, adminActor, req.ID, "curation", "")
		}(i)
	}
	wg.Wait()

	var oks, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			oks++
		case errors.Is(err, ErrConflict) || IsIllegalTransition(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if oks != 1 || conflicts != 1 {
		t.Fatalf("oks=%d conflicts=%d, want 1/1", oks, conflicts)
	}

	if history, _ := repo.ListHistory(ctx, req.ID); len(history) != 1 {
		t.Fatalf("history entries = %d, want exactly 1", len(history))
	}
}

func TestTransition_NotifiesClientByEmail(t *testing.T) {
	repo := newTestRepo()
	notifier := &testNotifier{ch: make(chan sentMail, 1)}
	dir := &testDirectory{emails: map[string]string{"client-1": "c1@example.com"}}

	svc := NewService(repo, dir, notifier, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }

	req := mustCreate(t, svc)
	if _, err := svc.Transition(context.Background(), adminActor, req.ID, "curation", ""); err != nil {
		t.Fatalf("transition: %v", err)
	}

	select {
	case mail := <-notifier.ch:
		if mail.to != "c1@example.com" {
			t.Fatalf("mail to = %s", mail.to)
		}
		if mail.subject == "" || mail.body == "" {
			t.Fatalf("empty mail: %+v", mail)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification never sent")
	}
}

func TestUpdateContent_OwnerOnlyAndNonTerminal(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	req := mustCreate(t, svc)
	ctx := context.Background()

	in := CreateInput{ServiceKind: "dining", Notes: "nueva nota"}

	updated, err := svc.UpdateContent(ctx, clientActor, req.ID, in)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.ServiceKind != KindDining || updated.Notes != "nueva nota" {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := svc.UpdateContent(ctx, adminActor, req.ID, in); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("admin update: got %v, want unauthorized", err)
	}

	// Terminal: el payload queda congelado.
	if _, err := svc.Transition(ctx, clientActor, req.ID, "discarded", ""); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if _, err := svc.UpdateContent(ctx, clientActor, req.ID, in); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("terminal update: got %v, want unauthorized", err)
	}
}
