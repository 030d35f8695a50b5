package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomKeyUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want RoomKey
	}{
		{`"chat-42"`, "chat-42"},
		{`42`, "42"},
		{`42.0`, "42"},
		{`-7`, "-7"},
		{`"0"`, "0"},
		{`""`, ""},
		{`0`, ""},
		{`null`, ""},
		{`false`, ""},
		{`true`, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			var k RoomKey
			require.NoError(t, json.Unmarshal([]byte(tt.in), &k))
			assert.Equal(t, tt.want, k)
		})
	}
}

func TestRoomKeyUnmarshal_RejectsCompositeValues(t *testing.T) {
	t.Parallel()

	for _, in := range []string{`{"id":1}`, `[1,2]`} {
		var k RoomKey
		err := json.Unmarshal([]byte(in), &k)
		assert.ErrorIs(t, err, ErrInvalidKey, in)
	}
}

func TestRouteKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		data string
		want RoomKey
	}{
		{KindJoinChat, `{"chat":"chat-42"}`, "chat-42"},
		{KindChatMessage, `{"chat":7,"text":"hi"}`, "7"},
		{KindRegisterProviderChannel, `{"provider_id":"p-1"}`, "p-1"},
		{KindRegisterUserChannel, `{"user_id":15}`, "15"},
		{KindNotifyProvider, `{"provider_id":"p-1","message":"x"}`, "p-1"},
		{KindNotifyUser, `{"user_id":"u-9"}`, "u-9"},
		{KindServiceConfirmation, `{"provider":{"provider_id":"p-2"},"service":"Plumbing"}`, "p-2"},
		{KindServiceConfirmation, `{"service":"Plumbing"}`, ""},
		{KindJoinChat, ``, ""},
		{KindJoinChat, `null`, ""},
	}

	for _, tt := range tests {
		rt, ok := routes[tt.kind]
		require.True(t, ok, tt.kind)
		got, err := rt.key(json.RawMessage(tt.data))
		require.NoError(t, err, "%s %s", tt.kind, tt.data)
		assert.Equal(t, tt.want, got, "%s %s", tt.kind, tt.data)
	}
}

func TestRouteActions(t *testing.T) {
	t.Parallel()

	joins := []Kind{KindJoinChat, KindRegisterProviderChannel, KindRegisterUserChannel}
	broadcasts := []Kind{KindChatMessage, KindNotifyProvider, KindNotifyUser, KindServiceConfirmation}

	for _, k := range joins {
		assert.Equal(t, actionJoin, routes[k].action, k)
	}
	for _, k := range broadcasts {
		assert.Equal(t, actionBroadcast, routes[k].action, k)
	}
	assert.Len(t, routes, len(joins)+len(broadcasts))
}
