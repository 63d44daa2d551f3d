package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/UkralStul/socialgraph/internal/domain"
	"github.com/UkralStul/socialgraph/internal/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// liveFeed - новые посты для ленты владельца.
func (s *Server) liveFeed(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	if chi.URLParam(r, "id") != actorID {
		s.writeError(w, r, domain.Forbidden("feed is only available to its owner"))
		return
	}
	s.stream(w, r, realtime.FeedTopic(actorID))
}

// liveComments - новые комментарии к посту.
func (s *Server) liveComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	// Проверяем, существует ли пост, прежде чем подписываться
	if _, err := s.svc.Posts.Get(r.Context(), postID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.stream(w, r, realtime.PostTopic(postID))
}

// stream переводит соединение в websocket и пересылает события топика, пока клиент на связи.
func (s *Server) stream(w http.ResponseWriter, r *http.Request, topic string) {
	// Подписываемся до ответа на upgrade, чтобы не потерять события сразу после подключения
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	events := s.hub.Subscribe(ctx, topic)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		s.log.Debug("websocket upgrade failed", zap.String("topic", topic), zap.Error(err))
		return
	}
	defer conn.Close()

	// Читаем входящие кадры только ради close и pong
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
