package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/calebdsmith/battleboats/internal/hub"
	"github.com/calebdsmith/battleboats/internal/metrics"
	"github.com/calebdsmith/battleboats/internal/relay"
	"github.com/calebdsmith/battleboats/internal/store"
	"github.com/calebdsmith/battleboats/internal/types"
)

// ResultStore is the slice of the store the API needs; nil means match
// history is disabled.
type ResultStore interface {
	SaveResult(ctx context.Context, r store.MatchResult) error
	Recent(ctx context.Context, n int) ([]store.MatchResult, error)
}

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

func CreateMatch(h *hub.Hub, m *metrics.Metrics, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			reply := make(chan *relay.Room, 1)
			h.Inbox() <- hub.GetRoom{Code: c, Reply: reply}
			if <-reply == nil {
				code = c
				break
			}
			log.Info("collision on code, regenerating", zap.String("code", c))
		}

		reply := make(chan *relay.Room, 1)
		h.Inbox() <- hub.EnsureRoom{Code: code, Reply: reply}
		if <-reply == nil {
			http.Error(w, "failed to create match", http.StatusInternalServerError)
			return
		}
		if m != nil {
			m.MatchesCreated.Inc()
		}

		writeJSON(w, http.StatusCreated, types.CreateMatchResponse{Code: code})
	}
}

// ReportResult records a finished game. The room is also torn down: a
// completed match never sees more traffic.
func ReportResult(h *hub.Hub, st ResultStore, m *metrics.Metrics, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		var report types.ResultReport
		if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
			writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "bad json"})
			return
		}

		h.Inbox() <- hub.RemoveRoom{Code: code}

		if st == nil {
			writeJSON(w, http.StatusServiceUnavailable,
				types.ErrorResponse{Error: "match history disabled"})
			return
		}

		err := st.SaveResult(r.Context(), store.MatchResult{
			Code:          code,
			Winner:        report.Winner,
			Turns:         report.Turns,
			CheatDetected: report.CheatDetected,
		})
		if err != nil {
			log.Error("saving match result", zap.String("code", code), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError,
				types.ErrorResponse{Error: "failed to save result"})
			return
		}
		if m != nil {
			m.ResultsStored.Inc()
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func RecentResults(st ResultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeJSON(w, http.StatusServiceUnavailable,
				types.ErrorResponse{Error: "match history disabled"})
			return
		}
		results, err := st.Recent(r.Context(), 50)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError,
				types.ErrorResponse{Error: "failed to load results"})
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
