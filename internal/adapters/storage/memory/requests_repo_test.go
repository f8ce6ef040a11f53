package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"concierium/internal/domain/requests"
)

func seedRequest(t *testing.T, repo requests.Repository, id string) requests.Request {
	t.Helper()
	req := requests.Request{
		ID:            id,
		ClientID:      "c1",
		ServiceKind:   requests.KindTour,
		CurrentStatus: requests.StatusNew,
		CreatedAt:     time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(context.Background(), req); err != nil {
		t.Fatalf("create: %v", err)
	}
	return req
}

func write(id string, from, to requests.Status, admin string) requests.StatusWrite {
	f := from
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	return requests.StatusWrite{
		RequestID:      id,
		ExpectedStatus: from,
		NewStatus:      to,
		AssignAdminID:  admin,
		Now:            now,
		Entry: requests.StatusHistoryEntry{
			ID:         "h-" + string(to),
			RequestID:  id,
			FromStatus: &f,
			ToStatus:   to,
			ChangedBy:  admin,
			CreatedAt:  now,
		},
	}
}

func TestUpdateStatus_CASAndHistory(t *testing.T) {
	repo := NewRequestsRepo()
	ctx := context.Background()
	seedRequest(t, repo, "r1")

	ok, err := repo.UpdateStatus(ctx, write("r1", requests.StatusNew, requests.StatusCuration, "admin-1"))
	if err != nil || !ok {
		t.Fatalf("first cas = (%v, %v)", ok, err)
	}

	// Mismo expected otra vez: el estado ya cambió, pierde sin error.
	ok, err = repo.UpdateStatus(ctx, write("r1", requests.StatusNew, requests.StatusDiscarded, "admin-2"))
	if err != nil {
		t.Fatalf("stale cas err: %v", err)
	}
	if ok {
		t.Fatal("stale expected status must not win")
	}

	stored, _ := repo.GetByID(ctx, "r1")
	if stored.CurrentStatus != requests.StatusCuration {
		t.Fatalf("status = %s", stored.CurrentStatus)
	}
	if stored.AssignedAdminID == nil || *stored.AssignedAdminID != "admin-1" {
		t.Fatalf("assigned = %v", stored.AssignedAdminID)
	}

	history, _ := repo.ListHistory(ctx, "r1")
	if len(history) != 1 || history[0].Seq != 1 {
		t.Fatalf("history = %+v", history)
	}

	if _, err := repo.UpdateStatus(ctx, write("missing", requests.StatusNew, requests.StatusCuration, "")); !errors.Is(err, requests.ErrNotFound) {
		t.Fatalf("missing id: got %v", err)
	}
}

func TestUpdateStatus_ConcurrentSingleWinner(t *testing.T) {
	repo := NewRequestsRepo()
	ctx := context.Background()
	seedRequest(t, repo, "r1")

	const racers = 8
	var wg sync.WaitGroup
	wins := make(chan bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.UpdateStatus(ctx, write("r1", requests.StatusNew, requests.StatusCuration, "admin-1"))
			if err != nil {
				t.Errorf("cas error: %v", err)
				return
			}
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	var winners int
	for ok := range wins {
		if ok {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
	history, _ := repo.ListHistory(ctx, "r1")
	if len(history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(history))
	}
}

func TestUpdate_PreservesWorkflowFields(t *testing.T) {
	repo := NewRequestsRepo()
	ctx := context.Background()
	req := seedRequest(t, repo, "r1")

	if _, err := repo.UpdateStatus(ctx, write("r1", requests.StatusNew, requests.StatusCuration, "admin-1")); err != nil {
		t.Fatalf("cas: %v", err)
	}

	// Un update de contenido no puede pisar estado ni asignación.
	req.Notes = "editado"
	req.CurrentStatus = requests.StatusClosed // el caller no manda aquí
	if err := repo.Update(ctx, req); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, _ := repo.GetByID(ctx, "r1")
	if stored.Notes != "editado" {
		t.Errorf("notes = %q", stored.Notes)
	}
	if stored.CurrentStatus != requests.StatusCuration {
		t.Errorf("status clobbered: %s", stored.CurrentStatus)
	}
	if stored.AssignedAdminID == nil || *stored.AssignedAdminID != "admin-1" {
		t.Errorf("assignment clobbered: %v", stored.AssignedAdminID)
	}
}

func TestClone_CallersCannotMutateStored(t *testing.T) {
	repo := NewRequestsRepo()
	ctx := context.Background()
	req := seedRequest(t, repo, "r1")
	guests := 2
	budget := 3500.0
	req.Interests = []string{"wine"}
	req.Guests = &guests
	req.BudgetUSD = &budget
	_ = repo.Update(ctx, req)
	if _, err := repo.UpdateStatus(ctx, write("r1", requests.StatusNew, requests.StatusCuration, "admin-1")); err != nil {
		t.Fatalf("cas: %v", err)
	}

	got, _ := repo.GetByID(ctx, "r1")
	got.Interests[0] = "mutated"
	*got.Guests = 99
	*got.BudgetUSD = 1.0
	*got.AssignedAdminID = "intruso"

	again, _ := repo.GetByID(ctx, "r1")
	if again.Interests[0] != "wine" {
		t.Fatalf("stored interests mutated: %v", again.Interests)
	}
	if *again.Guests != 2 {
		t.Fatalf("stored guests mutated: %d", *again.Guests)
	}
	if *again.BudgetUSD != 3500.0 {
		t.Fatalf("stored budget mutated: %v", *again.BudgetUSD)
	}
	if *again.AssignedAdminID != "admin-1" {
		t.Fatalf("stored assignment mutated: %q", *again.AssignedAdminID)
	}
}
