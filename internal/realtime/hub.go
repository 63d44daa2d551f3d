// Package realtime рассылает события подписчикам живых лент и комментариев.
package realtime

import (
	"context"
	"sync"

	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventType string

const (
	EventPostCreated  EventType = "post.created"
	EventCommentAdded EventType = "comment.added"
)

// Event - сообщение, которое уходит подписчику как есть (в JSON).
type Event struct {
	Type    EventType       `json:"type"`
	Post    *domain.Post    `json:"post,omitempty"`
	Comment *domain.Comment `json:"comment,omitempty"`
}

// FeedTopic - поток новых постов для ленты аккаунта.
func FeedTopic(accountID string) string { return "feed:" + accountID }

// PostTopic - поток новых комментариев к посту.
func PostTopic(postID string) string { return "post:" + postID }

const defaultBuffer = 16

// Hub хранит каналы подписчиков по топикам.
type Hub struct {
	mu sync.RWMutex
	//          map[topic] map[subscriberID] channel
	subs   map[string]map[string]chan Event
	buffer int
	log    *zap.Logger
}

func NewHub(buffer int, log *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[string]map[string]chan Event),
		buffer: buffer,
		log:    log,
	}
}

// Subscribe регистрирует подписчика. Канал закрывается, когда ctx отменен.
func (h *Hub) Subscribe(ctx context.Context, topic string) <-chan Event {
	ch := make(chan Event, h.buffer)
	subID := uuid.NewString()

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[string]chan Event)
	}
	h.subs[topic][subID] = ch
	h.mu.Unlock()

	// Горутина для очистки при отключении клиента
	go func() {
		<-ctx.Done()
		h.mu.Lock()
		if topicSubs, ok := h.subs[topic]; ok {
			delete(topicSubs, subID)
			if len(topicSubs) == 0 {
				delete(h.subs, topic)
			}
		}
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

// Publish не блокируется: если подписчик не успевает читать, событие для него теряется.
func (h *Hub) Publish(topic string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for subID, ch := range h.subs[topic] {
		select {
		case ch <- ev:
		default:
			h.log.Debug("dropping event for slow subscriber",
				zap.String("topic", topic),
				zap.String("subscriber", subID),
				zap.String("type", string(ev.Type)),
			)
		}
	}
}

// Subscribers возвращает число активных подписчиков топика.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
