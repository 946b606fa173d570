package trigger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hazyhaar/streamscribe/transcript/internal/collect"
)

type recordingSurface struct {
	mu     sync.Mutex
	states []State
}

func (r *recordingSurface) Show(_ context.Context, s State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
	return nil
}

func (r *recordingSurface) kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.states))
	for i, s := range r.states {
		out[i] = s.Kind
	}
	return out
}

func (r *recordingSurface) last() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[len(r.states)-1]
}

func equalKinds(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGuard_SuccessShowsProgressThenSavedThenIdle(t *testing.T) {
	s := &recordingSurface{}
	g := NewGuard(s, 0, nil)

	err := g.Run(context.Background(), func(_ context.Context, report func(collect.Progress)) (int, error) {
		report(collect.Progress{Offset: 500, Extent: 1000, Entries: 12})
		return 42, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []Kind{Working, Working, Saved, Idle}
	if got := s.kinds(); !equalKinds(got, want) {
		t.Fatalf("states: got %v, want %v", got, want)
	}
	if s.states[1].Percent != 50 || s.states[1].Entries != 12 {
		t.Errorf("progress state: got %+v", s.states[1])
	}
	if s.states[2].Entries != 42 {
		t.Errorf("saved state: got %+v", s.states[2])
	}
	if g.Running() {
		t.Error("guard still running")
	}
}

func TestGuard_MissingContainerRestoresImmediately(t *testing.T) {
	s := &recordingSurface{}
	g := NewGuard(s, time.Hour, nil)

	jobErr := fmt.Errorf("page: %w", collect.ErrMissingContainer)
	err := g.Run(context.Background(), func(context.Context, func(collect.Progress)) (int, error) {
		return 0, jobErr
	})
	if !errors.Is(err, collect.ErrMissingContainer) {
		t.Fatalf("err: got %v", err)
	}

	want := []Kind{Working, Failed, Idle}
	if got := s.kinds(); !equalKinds(got, want) {
		t.Fatalf("states: got %v, want %v", got, want)
	}
	if s.states[1].Message != "Cannot find transcript container!" {
		t.Errorf("message: got %q", s.states[1].Message)
	}
}

func TestGuard_EmptyResultMessage(t *testing.T) {
	s := &recordingSurface{}
	g := NewGuard(s, 0, nil)
	g.Run(context.Background(), func(context.Context, func(collect.Progress)) (int, error) {
		return 0, collect.ErrEmptyResult
	})
	if s.states[1].Kind != Failed || s.states[1].Message != FailureMessage(collect.ErrEmptyResult) {
		t.Fatalf("got %+v", s.states[1])
	}
	if s.last().Kind != Idle {
		t.Errorf("last state: got %v, want Idle", s.last().Kind)
	}
}

func TestGuard_BusyWhileRunning(t *testing.T) {
	s := &recordingSurface{}
	g := NewGuard(s, 0, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- g.Run(context.Background(), func(context.Context, func(collect.Progress)) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()

	<-started
	if !g.Running() {
		t.Fatal("Running: want true")
	}
	err := g.Run(context.Background(), func(context.Context, func(collect.Progress)) (int, error) {
		t.Error("second job must not run")
		return 0, nil
	})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("second Run: got %v, want ErrBusy", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	// The rejected trigger must not have touched the surface.
	want := []Kind{Working, Saved, Idle}
	if got := s.kinds(); !equalKinds(got, want) {
		t.Fatalf("states: got %v, want %v", got, want)
	}
}

func TestGuard_DelayedRestore(t *testing.T) {
	s := &recordingSurface{}
	g := NewGuard(s, 20*time.Millisecond, nil)

	if err := g.Run(context.Background(), func(context.Context, func(collect.Progress)) (int, error) {
		return 3, nil
	}); err != nil {
		t.Fatal(err)
	}
	if s.last().Kind != Saved {
		t.Fatalf("immediately after run: got %v, want Saved", s.last().Kind)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.last().Kind != Idle {
		if time.Now().After(deadline) {
			t.Fatal("surface never restored to Idle")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// gatedSurface blocks its first Idle draw until release is closed.
type gatedSurface struct {
	recordingSurface
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSurface) Show(ctx context.Context, s State) error {
	if s.Kind == Idle {
		first := false
		g.once.Do(func() { first = true })
		if first {
			close(g.entered)
			<-g.release
		}
	}
	return g.recordingSurface.Show(ctx, s)
}

func TestGuard_RestoreDrawsBeforeNextRun(t *testing.T) {
	s := &gatedSurface{entered: make(chan struct{}), release: make(chan struct{})}
	g := NewGuard(s, 5*time.Millisecond, nil)
	job := func(context.Context, func(collect.Progress)) (int, error) { return 1, nil }

	if err := g.Run(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	<-s.entered

	done := make(chan error, 1)
	go func() { done <- g.Run(context.Background(), job) }()

	time.Sleep(20 * time.Millisecond)
	if got := s.kinds(); !equalKinds(got, []Kind{Working, Saved}) {
		t.Fatalf("second run drew during restore: %v", got)
	}

	close(s.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	got := s.kinds()
	if len(got) < 4 || !equalKinds(got[:4], []Kind{Working, Saved, Idle, Working}) {
		t.Fatalf("states: got %v, want Idle before the second Working", got)
	}
}

func TestGuard_RunOnRestoresPendingSurface(t *testing.T) {
	button := &recordingSurface{}
	api := &recordingSurface{}
	g := NewGuard(nil, time.Hour, nil)
	job := func(context.Context, func(collect.Progress)) (int, error) { return 2, nil }

	if err := g.RunOn(context.Background(), button, job); err != nil {
		t.Fatal(err)
	}
	if button.last().Kind != Saved {
		t.Fatalf("button: got %v, want Saved", button.last().Kind)
	}

	if err := g.RunOn(context.Background(), api, job); err != nil {
		t.Fatal(err)
	}
	if got := button.kinds(); !equalKinds(got, []Kind{Working, Saved, Idle}) {
		t.Errorf("button: got %v", got)
	}
	if got := api.kinds(); !equalKinds(got, []Kind{Working, Saved}) {
		t.Errorf("api: got %v", got)
	}
}

func TestGuard_PanicReleases(t *testing.T) {
	s := &recordingSurface{}
	g := NewGuard(s, 0, nil)
	err := g.Run(context.Background(), func(context.Context, func(collect.Progress)) (int, error) {
		panic("boom")
	})
	if err == nil {
		t.Fatal("expected error from panicking job")
	}
	if g.Running() {
		t.Fatal("guard not released after panic")
	}
	if s.last().Kind != Idle {
		t.Errorf("last state: got %v", s.last().Kind)
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		s     State
		text  string
		color string
	}{
		{State{Kind: Idle}, "Extract Full Transcript", colorIdle},
		{State{Kind: Working}, "Working... 0%", colorWorking},
		{State{Kind: Working, Percent: 37, Entries: 120}, "Working... 37% (120 entries)", colorWorking},
		{State{Kind: Saved, Entries: 120}, "✓ Saved 120 entries!", colorSaved},
		{State{Kind: Failed, Message: "x"}, "Extract Full Transcript", colorIdle},
	}
	for _, c := range cases {
		text, color := c.s.Label("Extract Full Transcript")
		if text != c.text || color != c.color {
			t.Errorf("Label(%+v): got (%q, %q), want (%q, %q)", c.s, text, color, c.text, c.color)
		}
	}
}
