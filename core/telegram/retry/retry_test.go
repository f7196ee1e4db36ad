package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

type fakeNetError struct{ timeout bool }

func (e fakeNetError) Error() string   { return "fake net error" }
func (e fakeNetError) Timeout() bool   { return e.timeout }
func (e fakeNetError) Temporary() bool { return false }

func recordingPolicy(maxRetries int, base time.Duration) (Policy, *[]time.Duration) {
	delays := &[]time.Duration{}
	p := Policy{
		MaxRetries: maxRetries,
		BaseDelay:  base,
		Sleep:      func(d time.Duration) { *delays = append(*delays, d) },
	}
	return p, delays
}

func TestDoSuccessFirstAttempt(t *testing.T) {
	p, delays := recordingPolicy(3, time.Second)
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if len(*delays) != 0 {
		t.Fatalf("delays = %v, want none", *delays)
	}
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	p, delays := recordingPolicy(3, time.Second)
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls <= 2 {
			return fakeNetError{timeout: true}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(*delays) != len(want) {
		t.Fatalf("delays = %v, want %v", *delays, want)
	}
	total := time.Duration(0)
	for i, d := range *delays {
		if d != want[i] {
			t.Fatalf("delay %d = %v, want %v", i, d, want[i])
		}
		total += d
	}
	if total != 6*time.Second {
		t.Fatalf("total delay = %v, want 6s", total)
	}
}

func TestDoFloodUsesSuggestedWait(t *testing.T) {
	p, delays := recordingPolicy(3, time.Second)
	calls := 0
	flood := tele.FloodError{Error: &tele.Error{Code: 429}, RetryAfter: 30}
	err := p.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return flood
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Suggested wait (30s) exceeds the computed backoff (2s).
	if len(*delays) != 1 || (*delays)[0] != 30*time.Second {
		t.Fatalf("delays = %v, want [30s]", *delays)
	}
}

func TestDoFloodKeepsLargerBackoff(t *testing.T) {
	p, delays := recordingPolicy(3, time.Minute)
	calls := 0
	flood := tele.FloodError{Error: &tele.Error{Code: 429}, RetryAfter: 5}
	err := p.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return flood
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*delays) != 1 || (*delays)[0] != 2*time.Minute {
		t.Fatalf("delays = %v, want [2m]", *delays)
	}
}

func TestDoNonRetryablePropagatesImmediately(t *testing.T) {
	p, delays := recordingPolicy(3, time.Second)
	boom := errors.New("boom")
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if len(*delays) != 0 {
		t.Fatalf("delays = %v, want none", *delays)
	}
}

func TestDoExhaustion(t *testing.T) {
	p, delays := recordingPolicy(3, time.Second)
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return fakeNetError{timeout: true}
	})
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want exactly MaxRetries (3)", calls)
	}
	// Sleeps happen between attempts only.
	if len(*delays) != 2 {
		t.Fatalf("delays = %v, want 2 entries", *delays)
	}
}

func TestWrapReturnsTerminalErrorToDispatch(t *testing.T) {
	p, _ := recordingPolicy(2, time.Millisecond)
	handler := p.Wrap(func(c tele.Context) error {
		return fakeNetError{timeout: true}
	})
	if err := handler(nil); !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
}
