package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Исходы событий для метрик.
const (
	outcomeJoined    = "joined"
	outcomeBroadcast = "broadcast"
	outcomeNoop      = "noop"
	outcomeError     = "error"
)

// Router применяет входящие события к реестру: join добавляет отправителя
// в комнату, broadcast рассылает кадр остальным участникам комнаты.
type Router struct {
	reg     *Registry
	metrics *Metrics
	log     *slog.Logger
}

func NewRouter(reg *Registry, metrics *Metrics, log *slog.Logger) *Router {
	return &Router{reg: reg, metrics: metrics, log: log}
}

// Dispatch обрабатывает один кадр от соединения from. Отсутствующий или
// ложный ключ комнаты превращает событие в no-op. Ошибки касаются только
// отправителя.
func (r *Router) Dispatch(from uuid.UUID, f Frame) error {
	err := r.dispatch(from, f)
	if err != nil {
		r.metrics.event(f.Event, outcomeError)
	}
	return err
}

func (r *Router) dispatch(from uuid.UUID, f Frame) error {
	if !r.reg.Admitted(from) {
		return ErrNotAdmitted
	}

	rt, ok := routes[f.Event]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, f.Event)
	}

	room, err := rt.key(f.Data)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Event, err)
	}
	if room == "" {
		r.metrics.event(f.Event, outcomeNoop)
		return nil
	}

	switch rt.action {
	case actionJoin:
		changed, err := r.reg.Join(from, room)
		if err != nil {
			return err
		}
		if changed {
			r.log.Debug("joined room",
				slog.String("conn_id", from.String()),
				slog.String("room", string(room)),
			)
		}
		r.metrics.event(f.Event, outcomeJoined)
		return nil

	case actionBroadcast:
		if err := r.broadcast(from, room, f); err != nil {
			return err
		}
		r.metrics.event(f.Event, outcomeBroadcast)
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownEvent, f.Event)
}

// broadcast ставит кадр в очередь каждому участнику комнаты, кроме
// отправителя. Получатель с полной очередью кадр теряет.
func (r *Router) broadcast(from uuid.UUID, room RoomKey, f Frame) error {
	msg, err := json.Marshal(Frame{Event: f.Event, Data: f.Data})
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	for _, c := range r.reg.Members(room) {
		if c.ID() == from {
			continue
		}
		switch reason := c.enqueue(msg); reason {
		case "":
			r.metrics.delivered.Inc()
		case DropClosed:
			// Соединение уже уходит; Remove уберёт его из комнаты.
			r.metrics.dropped.WithLabelValues(DropClosed).Inc()
		default:
			r.metrics.dropped.WithLabelValues(reason).Inc()
			r.log.Warn("frame dropped",
				slog.String("conn_id", c.ID().String()),
				slog.String("room", string(room)),
				slog.String("event", string(f.Event)),
				slog.String("reason", reason),
			)
		}
	}
	return nil
}
