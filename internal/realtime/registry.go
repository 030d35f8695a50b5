package realtime

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAlreadyAdmitted = errors.New("connection already admitted")
	ErrNotAdmitted     = errors.New("connection not admitted")
)

// Metadata — данные участника, переданные при подключении.
// Нужны только для диагностики.
type Metadata struct {
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	ConnectedAt time.Time `json:"connected_at"`
}

type entry struct {
	conn  *Conn
	meta  Metadata
	rooms map[RoomKey]struct{}
}

// Registry хранит живые соединения и их комнаты.
// Живёт в памяти процесса; после рестарта ничего не сохраняется.
type Registry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]*entry
	rooms map[RoomKey]map[uuid.UUID]*Conn
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[uuid.UUID]*entry),
		rooms: make(map[RoomKey]map[uuid.UUID]*Conn),
	}
}

func (r *Registry) Admit(c *Conn, meta Metadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[c.ID()]; ok {
		return ErrAlreadyAdmitted
	}
	if meta.ConnectedAt.IsZero() {
		meta.ConnectedAt = time.Now().UTC()
	}
	r.conns[c.ID()] = &entry{conn: c, meta: meta, rooms: make(map[RoomKey]struct{})}
	return nil
}

// Join добавляет соединение в комнату. Повторный вход ничего не меняет;
// флаг сообщает, изменилось ли членство.
func (r *Registry) Join(id uuid.UUID, room RoomKey) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[id]
	if !ok {
		return false, ErrNotAdmitted
	}
	if _, member := e.rooms[room]; member {
		return false, nil
	}
	e.rooms[room] = struct{}{}

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[uuid.UUID]*Conn)
		r.rooms[room] = members
	}
	members[id] = e.conn
	return true, nil
}

// Remove убирает соединение из всех комнат и забывает его метаданные.
// Опустевшие комнаты удаляются. Возвращает комнаты, где оно состояло.
func (r *Registry) Remove(id uuid.UUID) []RoomKey {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[id]
	if !ok {
		return nil
	}
	delete(r.conns, id)

	left := make([]RoomKey, 0, len(e.rooms))
	for room := range e.rooms {
		members := r.rooms[room]
		delete(members, id)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
		left = append(left, room)
	}
	sortKeys(left)
	return left
}

func (r *Registry) Admitted(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[id]
	return ok
}

// Members — снимок соединений комнаты.
func (r *Registry) Members(room RoomKey) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	out := make([]*Conn, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Rooms(id uuid.UUID) []RoomKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns[id]
	if !ok {
		return nil
	}
	out := make([]RoomKey, 0, len(e.rooms))
	for room := range e.rooms {
		out = append(out, room)
	}
	sortKeys(out)
	return out
}

func (r *Registry) Metadata(id uuid.UUID) (Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns[id]
	if !ok {
		return Metadata{}, false
	}
	return e.meta, true
}

// Len — число допущенных соединений.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Conns — снимок всех допущенных соединений.
func (r *Registry) Conns() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Conn, 0, len(r.conns))
	for _, e := range r.conns {
		out = append(out, e.conn)
	}
	return out
}

func sortKeys(keys []RoomKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
}
