package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter() (*Registry, *Router, *Metrics) {
	reg := NewRegistry()
	metrics := NewMetrics()
	return reg, NewRouter(reg, metrics, discardLogger()), metrics
}

func admit(t *testing.T, reg *Registry, buffer int) *Conn {
	t.Helper()
	c := NewConn(uuid.New(), buffer)
	require.NoError(t, reg.Admit(c, Metadata{FirstName: "Test"}))
	return c
}

func frame(kind Kind, data string) Frame {
	return Frame{Event: kind, Data: json.RawMessage(data)}
}

// drain забирает без блокировки все кадры, уже стоящие в очереди c.
func drain(t *testing.T, c *Conn) []Frame {
	t.Helper()
	var out []Frame
	for {
		select {
		case msg := <-c.Send():
			var f Frame
			require.NoError(t, json.Unmarshal(msg, &f))
			out = append(out, f)
		default:
			return out
		}
	}
}
