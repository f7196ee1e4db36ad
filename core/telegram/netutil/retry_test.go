package netutil

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

type fakeNetError struct {
	timeout   bool
	temporary bool
}

func (e fakeNetError) Error() string   { return "fake net error" }
func (e fakeNetError) Timeout() bool   { return e.timeout }
func (e fakeNetError) Temporary() bool { return e.temporary }

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"timeout", fakeNetError{timeout: true}, true},
		{"temporary", fakeNetError{temporary: true}, true},
		{"plain", errors.New("boom"), false},
		{"flood", tele.FloodError{Error: &tele.Error{Code: 429}, RetryAfter: 3}, true},
		{"conflict", &tele.Error{Code: 409, Description: "Conflict: terminated by other getUpdates request"}, true},
		{"bad request", &tele.Error{Code: 400, Description: "Bad Request"}, false},
		{"unauthorized", &tele.Error{Code: 401, Description: "Unauthorized"}, false},
		{"wrapped url timeout", &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: fakeNetError{timeout: true}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldRetry(tc.err); got != tc.want {
				t.Fatalf("ShouldRetry(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestSuggestedWait(t *testing.T) {
	if d := SuggestedWait(errors.New("boom")); d != 0 {
		t.Fatalf("plain error wait = %v, want 0", d)
	}
	flood := tele.FloodError{Error: &tele.Error{Code: 429}, RetryAfter: 7}
	if d := SuggestedWait(flood); d != 7*time.Second {
		t.Fatalf("flood wait = %v, want 7s", d)
	}
}
