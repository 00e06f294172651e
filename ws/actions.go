package ws

import (
	"errors"

	"golang.org/x/time/rate"

	"goLangClient/config"
	"goLangClient/state"
)

var ErrRateLimited = errors.New("too many player actions")

// ActionSender throttles player actions on their way to the server. Other
// messages pass straight through. A throttled action fails instead of
// waiting, so a held key cannot queue up a burst of trades.
type ActionSender struct {
	next    state.Sender
	limiter *rate.Limiter
}

func NewActionSender(next state.Sender, perSecond float64, burst int) *ActionSender {
	if perSecond <= 0 {
		perSecond = config.DefaultActionsPerSecond
	}
	if burst <= 0 {
		burst = config.ActionBurst
	}
	return &ActionSender{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (a *ActionSender) Send(msgType string, data any) error {
	if msgType == state.MsgPlayerAction && !a.limiter.Allow() {
		return ErrRateLimited
	}
	return a.next.Send(msgType, data)
}
