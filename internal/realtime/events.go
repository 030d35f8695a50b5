package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrInvalidKey   = errors.New("room key must be a string or a number")
)

// Kind — имя события в кадре.
type Kind string

const (
	KindJoinChat                Kind = "join-chat"
	KindChatMessage             Kind = "chat-message"
	KindRegisterProviderChannel Kind = "register-provider-channel"
	KindRegisterUserChannel     Kind = "register-user-channel"
	KindNotifyProvider          Kind = "notify-provider"
	KindNotifyUser              Kind = "notify-user"
	KindServiceConfirmation     Kind = "service-confirmation"
)

// Frame — конверт сообщения в обе стороны.
type Frame struct {
	Event Kind            `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomKey — идентификатор комнаты из полезной нагрузки события.
// Клиенты шлют id чатов и участников строкой или числом; оба вида дают один
// ключ. Ложные значения (null, "", 0, false) декодируются в пустой ключ.
type RoomKey string

func (k *RoomKey) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")), bytes.Equal(b, []byte("false")):
		*k = ""
		return nil
	case bytes.Equal(b, []byte("true")):
		*k = "true"
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*k = RoomKey(s)
		return nil
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidKey, b)
		}
		if f == 0 {
			*k = ""
			return nil
		}
		*k = RoomKey(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidKey, b)
	}
}

// Полезные нагрузки. Декодируются только поля с именем комнаты,
// остальное пересылается как есть.

type ChatPayload struct {
	Chat RoomKey `json:"chat"`
}

type ProviderPayload struct {
	ProviderID RoomKey `json:"provider_id"`
}

type UserPayload struct {
	UserID RoomKey `json:"user_id"`
}

type ConfirmationPayload struct {
	Provider *ProviderPayload `json:"provider"`
}

type action int

const (
	actionJoin action = iota + 1
	actionBroadcast
)

func (a action) String() string {
	switch a {
	case actionJoin:
		return "join"
	case actionBroadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

type route struct {
	action action
	key    func(data json.RawMessage) (RoomKey, error)
}

func chatKey(data json.RawMessage) (RoomKey, error) {
	var p ChatPayload
	if err := decode(data, &p); err != nil {
		return "", err
	}
	return p.Chat, nil
}

func providerKey(data json.RawMessage) (RoomKey, error) {
	var p ProviderPayload
	if err := decode(data, &p); err != nil {
		return "", err
	}
	return p.ProviderID, nil
}

func userKey(data json.RawMessage) (RoomKey, error) {
	var p UserPayload
	if err := decode(data, &p); err != nil {
		return "", err
	}
	return p.UserID, nil
}

func confirmationKey(data json.RawMessage) (RoomKey, error) {
	var p ConfirmationPayload
	if err := decode(data, &p); err != nil {
		return "", err
	}
	if p.Provider == nil {
		return "", nil
	}
	return p.Provider.ProviderID, nil
}

// routes — таблица диспетчеризации: событие → действие и источник ключа комнаты.
var routes = map[Kind]route{
	KindJoinChat:                {actionJoin, chatKey},
	KindChatMessage:             {actionBroadcast, chatKey},
	KindRegisterProviderChannel: {actionJoin, providerKey},
	KindRegisterUserChannel:     {actionJoin, userKey},
	KindNotifyProvider:          {actionBroadcast, providerKey},
	KindNotifyUser:              {actionBroadcast, userKey},
	KindServiceConfirmation:     {actionBroadcast, confirmationKey},
}

// decode считает отсутствующую или null нагрузку пустой; иначе ожидается
// JSON-объект.
func decode(data json.RawMessage, v any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '{' {
		return fmt.Errorf("decode payload: expected object, got %.16s", data)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
