package telegram

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	LongPollTimeoutSeconds int
}

// BuildPoller returns a long-polling Telebot poller based on provided options.
func BuildPoller(opts PollerOptions) tele.Poller {
	timeoutSec := opts.LongPollTimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = 30
	}
	return &tele.LongPoller{Timeout: time.Duration(timeoutSec) * time.Second}
}
