package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Conn — исходящая сторона живого соединения: ограниченная очередь
// закодированных кадров, которую вычитывает writeLoop транспорта.
// Канал send никогда не закрывается; конец соединения сигнализирует done.
type Conn struct {
	id   uuid.UUID
	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewConn(id uuid.UUID, buffer int) *Conn {
	if buffer <= 0 {
		buffer = 1
	}
	return &Conn{
		id:   id,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *Conn) ID() uuid.UUID { return c.id }

// Send — очередь, которую вычитывает writeLoop.
func (c *Conn) Send() <-chan []byte { return c.send }

// Done закрывается при завершении соединения.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Close помечает соединение завершённым. Повторный вызов безопасен.
func (c *Conn) Close() {
	c.once.Do(func() { close(c.done) })
}

// enqueue никогда не блокируется. Пустая строка — кадр поставлен в очередь,
// иначе причина отказа: DropClosed или DropQueueFull.
func (c *Conn) enqueue(msg []byte) string {
	select {
	case <-c.done:
		return DropClosed
	default:
	}
	select {
	case c.send <- msg:
		return ""
	default:
		return DropQueueFull
	}
}
