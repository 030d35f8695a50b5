package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/Leganyst/service-marketplace/internal/config"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server — websocket-эндпоинт. У каждого соединения readLoop крутится
// в горутине обработчика, writeLoop — в своей.
type Server struct {
	reg     *Registry
	router  *Router
	metrics *Metrics
	cfg     config.RealtimeConfig
	log     *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewServer(reg *Registry, router *Router, metrics *Metrics, cfg config.RealtimeConfig, log *slog.Logger) *Server {
	return &Server{
		reg:     reg,
		router:  router,
		metrics: metrics,
		cfg:     cfg,
		log:     log,
	}
}

// ServeHTTP реализует http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту.
		s.log.Warn("websocket upgrade failed", slog.Any("err", err))
		return
	}

	conn := NewConn(uuid.New(), s.cfg.SendBuffer)
	meta := Metadata{
		FirstName: r.URL.Query().Get("firstname"),
		LastName:  r.URL.Query().Get("lastname"),
	}
	if err := s.reg.Admit(conn, meta); err != nil {
		s.log.Error("admit connection", slog.Any("err", err))
		ws.Close()
		return
	}
	s.metrics.connections.Inc()

	s.mu.Lock()
	if s.closed {
		// Shutdown уже прошёл по реестру и этого соединения не видел.
		conn.Close()
	}
	s.mu.Unlock()

	log := s.log.With(
		slog.String("conn_id", conn.ID().String()),
		slog.String("firstname", meta.FirstName),
		slog.String("lastname", meta.LastName),
	)
	log.Info("client connected")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ws, conn, log)
	}()

	s.readLoop(ws, conn, log)

	rooms := s.reg.Remove(conn.ID())
	conn.Close()
	<-writerDone
	ws.Close()
	s.metrics.connections.Dec()

	log.Info("client disconnected", slog.Int("rooms_left", len(rooms)))
}

func (s *Server) readLoop(ws *websocket.Conn, conn *Conn, log *slog.Logger) {
	pongWait := s.cfg.PongWait
	if s.cfg.MaxMessageBytes > 0 {
		ws.SetReadLimit(s.cfg.MaxMessageBytes)
	}
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	limiter := rate.NewLimiter(rate.Limit(s.cfg.EventsPerSecond), s.cfg.Burst)

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("read failed", slog.Any("err", err))
			}
			return
		}
		// Любое входящее сообщение продлевает жизнь соединения.
		ws.SetReadDeadline(time.Now().Add(pongWait))

		if !limiter.Allow() {
			s.metrics.dropped.WithLabelValues(DropRateLimited).Inc()
			continue
		}

		var f Frame
		if err := json.Unmarshal(msg, &f); err != nil {
			s.metrics.event("", outcomeError)
			log.Warn("malformed frame", slog.Any("err", err))
			continue
		}
		if err := s.router.Dispatch(conn.ID(), f); err != nil {
			log.Warn("event rejected",
				slog.String("event", string(f.Event)),
				slog.Any("err", err),
			)
		}
	}
}

func (s *Server) writeLoop(ws *websocket.Conn, conn *Conn, log *slog.Logger) {
	ticker := time.NewTicker(s.cfg.PongWait * 9 / 10)
	defer ticker.Stop()
	// Закрытие сокета разблокирует readLoop, если писатель упал первым.
	defer ws.Close()

	for {
		select {
		case msg := <-conn.Send():
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug("write failed", slog.Any("err", err))
				return
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug("failed to write ping", slog.Any("err", err))
				return
			}
		case <-conn.Done():
			closeMsg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
			_ = ws.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait))
			return
		}
	}
}

// Shutdown перестаёт принимать соединения, закрывает живые и ждёт
// завершения их обработчиков либо истечения ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	for _, c := range s.reg.Conns() {
		c.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
