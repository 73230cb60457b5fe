// Package events - канал событий сессии поверх redis pub/sub.
// Клиент подписывается на свой профиль и обновляет состояние по событию, без опроса.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Type string

const (
	RoleChanged         Type = "role_changed"
	PermissionsChanged  Type = "permissions_changed"
	NotificationCreated Type = "notification_created"
	SessionRefresh      Type = "session_refresh"
)

type Event struct {
	Type      Type            `json:"type"`
	ProfileID uuid.UUID       `json:"profile_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	At        time.Time       `json:"at"`
}

// New собирает событие; payload сериализуется в JSON
func New(t Type, profileID uuid.UUID, payload any) Event {
	ev := Event{Type: t, ProfileID: profileID, At: time.Now().UTC()}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			ev.Payload = raw
		}
	}
	return ev
}

// Channel - имя канала профиля
func Channel(profileID uuid.UUID) string {
	return "studio:session:" + profileID.String()
}

// Publisher публикует события сессии
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop используется, когда redis не настроен
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Bus - publisher и subscriber поверх redis
type Bus struct {
	client *redis.Client
	logger *zap.Logger
}

func NewBus(client *redis.Client, logger *zap.Logger) *Bus {
	return &Bus{client: client, logger: logger}
}

// Publish отправляет событие в канал профиля
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, Channel(ev.ProfileID), data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Subscription - подписка на события одного профиля
type Subscription struct {
	pubsub *redis.PubSub
	out    chan Event
	done   chan struct{}
	logger *zap.Logger
}

// Subscribe подписывается на канал профиля и ждёт подтверждения от redis
func (b *Bus) Subscribe(ctx context.Context, profileID uuid.UUID) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, Channel(profileID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", Channel(profileID), err)
	}

	sub := &Subscription{
		pubsub: pubsub,
		out:    make(chan Event, 16),
		done:   make(chan struct{}),
		logger: b.logger,
	}
	go sub.run()
	return sub, nil
}

func (s *Subscription) run() {
	defer close(s.out)

	for msg := range s.pubsub.Channel() {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			s.logger.Warn("Dropping malformed session event",
				zap.String("channel", msg.Channel),
				zap.Error(err),
			)
			continue
		}

		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}

// Events возвращает канал событий; закрывается после Close
func (s *Subscription) Events() <-chan Event {
	return s.out
}

// Close отписывается от канала
func (s *Subscription) Close() error {
	select {
	case <-s.done:
		return nil
	default:
		close(s.done)
	}
	return s.pubsub.Close()
}
