package coalesce

import (
	"testing"
	"time"

	"github.com/seojin-dev/boardwatch/internal/board"
)

func newTestCoalescer(t *testing.T, interval time.Duration) (*Coalescer, chan struct{}) {
	t.Helper()
	fired := make(chan struct{}, 16)
	c := New(interval, func() { fired <- struct{}{} })
	t.Cleanup(c.Stop)
	return c, fired
}

func waitFire(t *testing.T, fired chan struct{}) {
	t.Helper()
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("debounce timer never fired")
	}
}

func TestBurstProducesSingleTurnEvent(t *testing.T) {
	c, fired := newTestCoalescer(t, 10*time.Millisecond)
	c.Reset(State{Active: board.White})

	// Burst of notifications all resolving to the same new state.
	for i := 0; i < 5; i++ {
		c.Observe(State{Active: board.Black})
	}
	waitFire(t, fired)

	events := c.Flush()
	if len(events) != 1 || events[0].Kind != KindTurn {
		t.Fatalf("events = %+v, want one turn", events)
	}
	if events[0].State.Active != board.Black {
		t.Fatalf("event must carry the latest state, got %v", events[0].State.Active)
	}

	// Exactly one timer for the whole burst.
	select {
	case <-fired:
		t.Fatalf("burst must be absorbed into one window")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNoChangeSuppressed(t *testing.T) {
	c, fired := newTestCoalescer(t, 10*time.Millisecond)
	c.Reset(State{Active: board.White})

	c.Observe(State{Active: board.White})
	c.Observe(State{Active: board.White})
	waitFire(t, fired)

	if events := c.Flush(); len(events) != 0 {
		t.Fatalf("no transition, expected zero events, got %+v", events)
	}

	// The first notification after the quiet window that does change the
	// state produces exactly one event with the latest view.
	c.Observe(State{Active: board.Black})
	waitFire(t, fired)
	events := c.Flush()
	if len(events) != 1 || events[0].Kind != KindTurn || events[0].State.Active != board.Black {
		t.Fatalf("events = %+v", events)
	}
}

func TestLatestStateWinsWithinWindow(t *testing.T) {
	c, fired := newTestCoalescer(t, 20*time.Millisecond)
	c.Reset(State{Active: board.White})

	c.Observe(State{Active: board.Black})
	c.Observe(State{Active: board.White}) // counter-move arrives inside the window

	waitFire(t, fired)
	if events := c.Flush(); len(events) != 0 {
		t.Fatalf("round trip back to delivered state must be suppressed, got %+v", events)
	}
}

func TestGameOverEmittedOnce(t *testing.T) {
	c, fired := newTestCoalescer(t, 10*time.Millisecond)
	c.Reset(State{Active: board.White})

	c.Observe(State{Active: board.White, GameOver: true})
	waitFire(t, fired)
	events := c.Flush()
	if len(events) != 1 || events[0].Kind != KindGameOver {
		t.Fatalf("events = %+v, want one gameover", events)
	}

	c.Observe(State{Active: board.White, GameOver: true})
	waitFire(t, fired)
	if events := c.Flush(); len(events) != 0 {
		t.Fatalf("gameover is terminal until reset, got %+v", events)
	}

	c.Reset(State{Active: board.White})
	c.Observe(State{Active: board.White, GameOver: true})
	waitFire(t, fired)
	if events := c.Flush(); len(events) != 1 {
		t.Fatalf("reset must re-arm gameover delivery, got %+v", events)
	}
}

func TestTurnAndGameOverTogether(t *testing.T) {
	c, fired := newTestCoalescer(t, 10*time.Millisecond)
	c.Reset(State{Active: board.White})

	c.Observe(State{Active: board.Black, GameOver: true})
	waitFire(t, fired)
	events := c.Flush()
	if len(events) != 2 {
		t.Fatalf("events = %+v, want turn then gameover", events)
	}
	if events[0].Kind != KindTurn || events[1].Kind != KindGameOver {
		t.Fatalf("order = %v, %v", events[0].Kind, events[1].Kind)
	}
}

func TestUnknownActiveColorIsNotATransition(t *testing.T) {
	c, fired := newTestCoalescer(t, 10*time.Millisecond)
	c.Reset(State{Active: board.White})

	c.Observe(State{Active: board.NoColor})
	waitFire(t, fired)
	if events := c.Flush(); len(events) != 0 {
		t.Fatalf("unknown color must not emit, got %+v", events)
	}

	// Regaining the same known color is still not a transition.
	c.Observe(State{Active: board.White})
	waitFire(t, fired)
	if events := c.Flush(); len(events) != 0 {
		t.Fatalf("same color after a gap must not emit, got %+v", events)
	}
}

func TestFlushWithoutWindowIsNil(t *testing.T) {
	c, _ := newTestCoalescer(t, 10*time.Millisecond)
	c.Reset(State{Active: board.White})
	if events := c.Flush(); events != nil {
		t.Fatalf("expected nil, got %+v", events)
	}
}

func TestClassifyHint(t *testing.T) {
	if ClassifyHint("panel") != KindGameOver || ClassifyHint("celebration") != KindGameOver {
		t.Fatalf("panel regions must hint gameover")
	}
	if ClassifyHint("board") != KindTurn || ClassifyHint("") != KindTurn {
		t.Fatalf("board regions must hint turn")
	}
}
