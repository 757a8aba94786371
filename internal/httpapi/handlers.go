package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mapcrown/mapcrown/internal/app"
	"github.com/mapcrown/mapcrown/internal/place"
	"github.com/mapcrown/mapcrown/internal/push"
	"github.com/mapcrown/mapcrown/internal/quiz"
	"github.com/mapcrown/mapcrown/internal/selection"
)

type handlers struct {
	d Deps
}

func (h *handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	if h.d.Ready != nil {
		if err := h.d.Ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type categoryInfo struct {
	ID       place.Category `json:"id"`
	Title    string         `json:"title"`
	Singular string         `json:"singular"`
}

func (h *handlers) categories(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	list := make([]categoryInfo, 0, len(place.All()))
	for _, c := range place.All() {
		list = append(list, categoryInfo{ID: c, Title: c.Title(), Singular: c.Singular()})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": list,
		"active":     s.Category(),
		"focus":      s.Focused(),
	})
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

func (h *handlers) layer(w http.ResponseWriter, r *http.Request) {
	c, err := place.Parse(chi.URLParam(r, "category"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	layer, err := h.d.Controller.SwitchCategory(r.Context(), sessionFrom(r.Context()), c, queryBool(r, "focus"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layer)
}

type selectResponse struct {
	Panel       selection.Panel    `json:"panel"`
	Suggestions []place.Suggestion `json:"suggestions,omitempty"`
}

func (h *handlers) selectFeature(w http.ResponseWriter, r *http.Request) {
	var req app.SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.Category != "" {
		c, err := place.Parse(string(req.Category))
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		req.Category = c
	}

	s := sessionFrom(r.Context())
	if strings.TrimSpace(req.Name) != "" {
		panel, sugg, err := h.d.Controller.SelectByName(r.Context(), s, req.Category, req.Name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, selectResponse{Panel: panel, Suggestions: sugg})
		return
	}

	panel, err := h.d.Controller.Select(r.Context(), s, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, selectResponse{Panel: panel})
}

func (h *handlers) panel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.d.Controller.Panel(sessionFrom(r.Context())))
}

func (h *handlers) facts(w http.ResponseWriter, r *http.Request) {
	v, err := h.d.Controller.Facts(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handlers) nextFact(w http.ResponseWriter, r *http.Request) {
	v, err := h.d.Controller.NextFact(sessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handlers) question(w http.ResponseWriter, r *http.Request) {
	mode, err := quiz.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var c place.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		if c, err = place.Parse(raw); err != nil {
			badRequest(w, err.Error())
			return
		}
	}
	q, err := h.d.Controller.Question(r.Context(), sessionFrom(r.Context()), mode, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type answerRequest struct {
	Choice *int `json:"choice"`
}

type feedbackResponse struct {
	quiz.Feedback
	AdvanceAfterMs int64 `json:"advanceAfterMs"`
}

func decodeChoice(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Choice == nil {
		badRequest(w, "body must be {\"choice\": <index>}")
		return 0, false
	}
	return *req.Choice, true
}

func (h *handlers) answer(w http.ResponseWriter, r *http.Request) {
	choice, ok := decodeChoice(w, r)
	if !ok {
		return
	}
	fb, err := h.d.Controller.Answer(r.Context(), sessionFrom(r.Context()), choice)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feedbackResponse{Feedback: fb, AdvanceAfterMs: fb.AdvanceAfter.Milliseconds()})
}

func (h *handlers) daily(w http.ResponseWriter, r *http.Request) {
	v, err := h.d.Controller.Daily(r.Context(), sessionFrom(r.Context()), r.URL.Query().Get("mode"), queryBool(r, "focus"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handlers) answerDaily(w http.ResponseWriter, r *http.Request) {
	choice, ok := decodeChoice(w, r)
	if !ok {
		return
	}
	fb, err := h.d.Controller.AnswerDaily(r.Context(), sessionFrom(r.Context()), choice)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feedbackResponse{Feedback: fb})
}

func (h *handlers) exportDaily(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	// Render first so an error can still produce a JSON response.
	var buf bytes.Buffer
	if err := h.d.Controller.ExportDaily(&buf, s); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="mapcrown-daily.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *handlers) websocket(w http.ResponseWriter, r *http.Request) {
	if h.d.Push == nil {
		http.Error(w, "push disabled", http.StatusNotFound)
		return
	}
	s := sessionFrom(r.Context())
	ch, err := push.Accept(w, r, h.d.OriginPatterns)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer ch.Close()
	unsub := h.d.Push.Register(s.ID, ch)
	defer unsub()

	if err := ch.Send(r.Context(), push.Message{Type: "panel", Payload: s.Selection.Panel()}); err != nil {
		return
	}
	ch.Wait(r.Context())
}
