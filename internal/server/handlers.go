package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"noisyspell/internal/corrector"
)

const (
	maxBodyBytes = 1 << 20
	// MaxSequenceWords bounds the words decoded by one predict request.
	MaxSequenceWords = 1000
)

// Corrector is the part of corrector.SpellCorrector the API serves.
type Corrector interface {
	Candidates(word string) []corrector.Candidate
	PredictSequence(words []string) []string
	CorrectText(text string) corrector.CorrectionResult
	AddCustomWord(ctx context.Context, word string) error
	RemoveCustomWord(ctx context.Context, word string) error
	CustomWords() []string
}

// Handler holds the HTTP handlers of the correction API.
type Handler struct {
	sc     Corrector
	logger *slog.Logger
}

func NewHandler(sc Corrector, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{sc: sc, logger: logger}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/candidates", h.handleCandidates)
	mux.HandleFunc("POST /api/v1/predict", h.handlePredict)
	mux.HandleFunc("POST /api/v1/correct", h.handleCorrect)

	mux.HandleFunc("GET /api/v1/custom-words", h.handleListCustomWords)
	mux.HandleFunc("POST /api/v1/custom-word", h.handleAddCustomWord)
	mux.HandleFunc("DELETE /api/v1/custom-word/{word}", h.handleRemoveCustomWord)
}

func (h *Handler) handleCandidates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Word string `json:"word"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Word) == "" {
		writeError(w, http.StatusBadRequest, "word is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"word":       req.Word,
		"candidates": h.sc.Candidates(req.Word),
	})
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Words []string `json:"words"`
	}
	if !decode(w, r, &req) {
		return
	}
	if len(req.Words) > MaxSequenceWords {
		writeError(w, http.StatusRequestEntityTooLarge, "too many words")
		return
	}
	start := time.Now()
	predicted := h.sc.PredictSequence(req.Words)
	h.logger.Debug("sequence decoded", "words", len(req.Words), "elapsed", time.Since(start))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"words":     req.Words,
		"predicted": predicted,
	})
}

func (h *Handler) handleCorrect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	writeJSON(w, http.StatusOK, h.sc.CorrectText(req.Text))
}

func (h *Handler) handleListCustomWords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"words": h.sc.CustomWords(),
	})
}

func (h *Handler) handleAddCustomWord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Word string `json:"word"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.sc.AddCustomWord(r.Context(), req.Word); err != nil {
		h.customWordError(w, "add", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (h *Handler) handleRemoveCustomWord(w http.ResponseWriter, r *http.Request) {
	if err := h.sc.RemoveCustomWord(r.Context(), r.PathValue("word")); err != nil {
		h.customWordError(w, "remove", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) customWordError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, corrector.ErrEmptyWord) {
		writeError(w, http.StatusBadRequest, "word is required")
		return
	}
	h.logger.Error("custom word "+op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// --- Helpers ---

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
