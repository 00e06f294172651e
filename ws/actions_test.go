package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goLangClient/state"
)

type countingSender struct {
	sent []string
}

func (c *countingSender) Send(msgType string, _ any) error {
	c.sent = append(c.sent, msgType)
	return nil
}

func TestActionSender_ThrottlesActions(t *testing.T) {
	next := &countingSender{}
	sender := NewActionSender(next, 0.001, 2)
	action := state.PlayerAction{PlayerID: "alice", Fund: state.FundA, Action: state.ActionAllIn}

	assert.NoError(t, sender.Send(state.MsgPlayerAction, action))
	assert.NoError(t, sender.Send(state.MsgPlayerAction, action))
	assert.ErrorIs(t, sender.Send(state.MsgPlayerAction, action), ErrRateLimited)

	// Non-action messages are never throttled.
	assert.NoError(t, sender.Send(state.MsgGetGameState, nil))
	assert.NoError(t, sender.Send(state.MsgJoinGame, state.JoinGame{}))

	assert.Equal(t, []string{
		state.MsgPlayerAction,
		state.MsgPlayerAction,
		state.MsgGetGameState,
		state.MsgJoinGame,
	}, next.sent)
}
