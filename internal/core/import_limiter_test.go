package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestImportLimiter_AcquireRelease(t *testing.T) {
	limiter := NewImportLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Status().Available; got != 2 {
		t.Errorf("initial Available = %d, want 2", got)
	}

	first, releaseFirst, err := limiter.Acquire(ctx, ImportTicket{ID: "imp-1", Kind: KindSales, File: "vendas.csv"})
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if first.Started.IsZero() {
		t.Error("Acquire should stamp Started")
	}
	_, releaseSecond, err := limiter.Acquire(ctx, ImportTicket{Kind: KindProducts})
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}

	status := limiter.Status()
	if status.Active != 2 || status.Available != 0 || len(status.InFlight) != 2 {
		t.Errorf("after two Acquire, status = %+v", status)
	}

	releaseFirst()
	releaseFirst() // second call is a no-op
	if got := limiter.ActiveCount(); got != 1 {
		t.Errorf("after Release, ActiveCount = %d, want 1", got)
	}

	releaseSecond()
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("after second Release, ActiveCount = %d, want 0", got)
	}
	if got := limiter.Status().Available; got != 2 {
		t.Errorf("after releases, Available = %d, want 2", got)
	}
}

func TestImportLimiter_GeneratesTicketID(t *testing.T) {
	limiter := NewImportLimiter(1, time.Second)

	ticket, release, err := limiter.Acquire(context.Background(), ImportTicket{Kind: KindCategories})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer release()

	if ticket.ID == "" {
		t.Fatal("expected a generated ticket ID")
	}
	inflight := limiter.Status().InFlight
	if len(inflight) != 1 || inflight[0].ID != ticket.ID || inflight[0].Kind != KindCategories {
		t.Errorf("InFlight = %+v, want the acquired ticket", inflight)
	}
}

func TestImportLimiter_InFlightOldestFirst(t *testing.T) {
	limiter := NewImportLimiter(3, time.Second)
	base := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	calls := 0
	limiter.now = func() time.Time {
		calls++
		return base.Add(time.Duration(-calls) * time.Minute)
	}

	for _, id := range []string{"a", "b", "c"} {
		_, release, err := limiter.Acquire(context.Background(), ImportTicket{ID: id})
		if err != nil {
			t.Fatalf("Acquire(%s) failed: %v", id, err)
		}
		defer release()
	}

	var got []string
	for _, tk := range limiter.Status().InFlight {
		got = append(got, tk.ID)
	}
	// Each later acquire is stamped earlier, so c is the oldest.
	want := []string{"c", "b", "a"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("InFlight order = %v, want %v", got, want)
		}
	}
}

func TestImportLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewImportLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	_, release, err := limiter.Acquire(ctx, ImportTicket{ID: "busy"})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer release()

	if _, _, err := limiter.Acquire(ctx, ImportTicket{ID: "late"}); !errors.Is(err, ErrTooManyImports) {
		t.Errorf("expected ErrTooManyImports, got %v", err)
	}
	if got := limiter.Status().Waiting; got != 0 {
		t.Errorf("Waiting after timeout = %d, want 0", got)
	}
}

func TestImportLimiter_ContextCancelled(t *testing.T) {
	limiter := NewImportLimiter(1, time.Second)

	_, release, err := limiter.Acquire(context.Background(), ImportTicket{ID: "busy"})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := limiter.Acquire(ctx, ImportTicket{ID: "cancelled"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestImportLimiter_ConcurrentAccess(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewImportLimiter(maxConcurrent, time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	maxObserved := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, release, err := limiter.Acquire(context.Background(), ImportTicket{Kind: KindSales})
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer release()

			mu.Lock()
			if c := limiter.ActiveCount(); c > maxObserved {
				maxObserved = c
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	if maxObserved > maxConcurrent {
		t.Errorf("observed %d concurrent imports, limit %d", maxObserved, maxConcurrent)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount after all releases = %d, want 0", got)
	}
}

func TestImportLimiter_WaitForDrain(t *testing.T) {
	limiter := NewImportLimiter(1, time.Second)

	if err := limiter.WaitForDrain(context.Background()); err != nil {
		t.Fatalf("WaitForDrain() on an idle limiter = %v", err)
	}

	_, release, err := limiter.Acquire(context.Background(), ImportTicket{ID: "slow"})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); err != nil {
		t.Errorf("WaitForDrain() = %v, want nil", err)
	}
}

func TestImportLimiter_WaitForDrainTimesOut(t *testing.T) {
	limiter := NewImportLimiter(1, time.Second)
	_, release, err := limiter.Acquire(context.Background(), ImportTicket{ID: "stuck"})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain() = %v, want DeadlineExceeded", err)
	}
}
