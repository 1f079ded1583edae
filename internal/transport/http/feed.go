package http

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"iqai-quiz-service/internal/domain"
)

// Feed fans leaderboard snapshots out to websocket subscribers. Slow clients
// never block a broadcast: their stale snapshot is dropped and replaced.
type Feed struct {
	mu          sync.Mutex
	subscribers map[chan []domain.LeaderboardEntry]struct{}
}

func NewFeed() *Feed {
	return &Feed{subscribers: make(map[chan []domain.LeaderboardEntry]struct{})}
}

// Subscribe returns a snapshot channel and a cancel function the caller must
// invoke to avoid leaks.
func (f *Feed) Subscribe() (<-chan []domain.LeaderboardEntry, func()) {
	ch := make(chan []domain.LeaderboardEntry, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast pushes a snapshot to every subscriber.
func (f *Feed) Broadcast(entries []domain.LeaderboardEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- entries:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- entries
		}
	}
}

// FeedHandler upgrades HTTP requests to websockets that stream leaderboard
// snapshots as scores come in.
type FeedHandler struct {
	feed     *Feed
	scores   ScoreStore
	upgrader websocket.Upgrader
}

func NewFeedHandler(feed *Feed, scores ScoreStore) *FeedHandler {
	return &FeedHandler{
		feed:   feed,
		scores: scores,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type feedMessage struct {
	Type    string                    `json:"type"`
	Payload []domain.LeaderboardEntry `json:"payload"`
}

func (h *FeedHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.feed.Subscribe()
	defer cancel()

	if initial, err := h.scores.TopN(r.Context(), domain.QuizSize); err == nil {
		if err := conn.WriteJSON(feedMessage{Type: "leaderboard", Payload: initial}); err != nil {
			return
		}
	}

	// Reader goroutine only detects disconnects; inbound frames are ignored.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case entries, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(feedMessage{Type: "leaderboard", Payload: entries}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
