package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type ratingRequest struct {
	MatchID   string `msgpack:"match_id"`
	HomeScore int    `msgpack:"home_score"`
}

func TestMockProcessMessageDecodesMsgpack(t *testing.T) {
	raw, err := msgpack.Marshal(ratingRequest{MatchID: "m1", HomeScore: 3})
	require.NoError(t, err)

	m := NewMock("TEST")
	var got ratingRequest
	require.NoError(t, m.ProcessMessage(raw, &got))

	assert.Equal(t, ratingRequest{MatchID: "m1", HomeScore: 3}, got)
	assert.Len(t, m.ProcessMessageCalls, 1)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	var got ratingRequest
	assert.Error(t, Decode([]byte{0xc1}, &got))
}
