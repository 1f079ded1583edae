package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"iqai-quiz-service/internal/domain"
	"iqai-quiz-service/internal/scan"
)

// QuizBuilder assembles complete quizzes.
type QuizBuilder interface {
	BuildQuiz(ctx context.Context, req domain.QuizRequest) ([]domain.Question, error)
}

// ScoreStore is the ranked leaderboard collaborator.
type ScoreStore interface {
	AddScore(ctx context.Context, pseudo string, score float64) error
	TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// ResultStore is the game-result log collaborator.
type ResultStore interface {
	Save(ctx context.Context, result domain.GameResult) error
	List(ctx context.Context) ([]domain.GameResult, error)
	DeleteAll(ctx context.Context) error
	DeleteIndexes(ctx context.Context, indexes []int) (int, error)
}

// ContentScanner runs the reliability analysis pipeline.
type ContentScanner interface {
	Scan(ctx context.Context, req scan.Request) (scan.Report, error)
}

// podiumSize is how many leaderboard rows the GET endpoint returns.
const podiumSize = 3

// Handler exposes the request/response API of the service.
type Handler struct {
	quiz    QuizBuilder
	scores  ScoreStore
	results ResultStore
	scanner ContentScanner
	feed    *Feed
}

func NewHandler(quiz QuizBuilder, scores ScoreStore, results ResultStore, scanner ContentScanner, feed *Feed) *Handler {
	return &Handler{quiz: quiz, scores: scores, results: results, scanner: scanner, feed: feed}
}

// Register wires all routes into the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/quiz", withCORS("GET,POST,OPTIONS", h.handleQuiz))
	mux.HandleFunc("/api/leaderboard", withCORS("GET,POST,OPTIONS", h.handleLeaderboard))
	mux.HandleFunc("/api/results", withCORS("GET,POST,DELETE,OPTIONS", h.handleResults))
	mux.HandleFunc("/api/scan", withCORS("POST,OPTIONS", h.handleScan))
	if h.feed != nil {
		mux.HandleFunc("/ws/leaderboard", NewFeedHandler(h.feed, h.scores).ServeWS)
	}
}

// withCORS allows the browser front-end to call the API from any origin and
// answers preflight requests.
func withCORS(methods string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func (h *Handler) handleQuiz(w http.ResponseWriter, r *http.Request) {
	var req domain.QuizRequest
	if r.Method == http.MethodPost && r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	questions, err := h.quiz.BuildQuiz(r.Context(), req)
	if err != nil {
		log.Printf("quiz build failed: %v", err)
		writeError(w, http.StatusInternalServerError, "quiz assembly failed")
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

type scorePayload struct {
	Pseudo string  `json:"pseudo"`
	Score  float64 `json:"score"`
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload scorePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if payload.Pseudo == "" {
			writeError(w, http.StatusBadRequest, "missing pseudo")
			return
		}
		if err := h.scores.AddScore(r.Context(), payload.Pseudo, payload.Score); err != nil {
			log.Printf("add score failed: %v", err)
			writeError(w, http.StatusInternalServerError, "score not saved")
			return
		}
		if h.feed != nil {
			if entries, err := h.scores.TopN(r.Context(), domain.QuizSize); err == nil {
				h.feed.Broadcast(entries)
			}
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	case http.MethodGet:
		entries, err := h.scores.TopN(r.Context(), podiumSize)
		if err != nil {
			log.Printf("leaderboard read failed: %v", err)
			writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
			return
		}
		writeJSON(w, http.StatusOK, entries)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type resultPayload struct {
	domain.GameResult
	Action  string `json:"action,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Indexes []int  `json:"indexes,omitempty"`
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload resultPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if payload.Action == "delete" {
			h.deleteResults(w, r, payload)
			return
		}
		if payload.Name == "" || payload.Total == 0 {
			writeError(w, http.StatusBadRequest, "missing name or total")
			return
		}
		result := payload.GameResult
		result.ID = uuid.NewString()
		if result.Date.IsZero() {
			result.Date = time.Now().UTC()
		}
		if len(result.Name) > 50 {
			result.Name = result.Name[:50]
		}
		if err := h.results.Save(r.Context(), result); err != nil {
			log.Printf("save result failed: %v", err)
			writeError(w, http.StatusInternalServerError, "result not saved")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})

	case http.MethodGet:
		results, err := h.results.List(r.Context())
		if err != nil {
			log.Printf("list results failed: %v", err)
			writeError(w, http.StatusInternalServerError, "results unavailable")
			return
		}
		writeJSON(w, http.StatusOK, results)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) deleteResults(w http.ResponseWriter, r *http.Request, payload resultPayload) {
	switch payload.Mode {
	case "all":
		if err := h.results.DeleteAll(r.Context()); err != nil {
			log.Printf("delete results failed: %v", err)
			writeError(w, http.StatusInternalServerError, "results not deleted")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": "all"})
	case "indexes":
		if payload.Indexes == nil {
			writeError(w, http.StatusBadRequest, "missing indexes")
			return
		}
		deleted, err := h.results.DeleteIndexes(r.Context(), payload.Indexes)
		if err != nil {
			log.Printf("delete results failed: %v", err)
			writeError(w, http.StatusInternalServerError, "results not deleted")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": deleted})
	default:
		writeError(w, http.StatusBadRequest, "invalid delete mode")
	}
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.scanner == nil {
		writeError(w, http.StatusServiceUnavailable, "scanner not configured")
		return
	}
	var req scan.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	report, err := h.scanner.Scan(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrMissingField) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("scan failed: %v", err)
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
