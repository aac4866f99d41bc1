package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"telegram-event-reminder/internal/domain"
	"telegram-event-reminder/internal/domain/ports/adapter"
	"telegram-event-reminder/internal/infra/logging"
	"telegram-event-reminder/internal/usecase"
)

type loginRequest struct {
	Key string `json:"key"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil || s.apiKey == "" {
		s.log.Error().Msg("admin api key or jwt secret is not configured")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !keyMatches(s.apiKey, req.Key) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token, exp, err := s.auth.Mint(w, "admin")
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("mint token")
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: exp})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	if s.auth != nil {
		s.auth.Clear(w)
	}
	w.WriteHeader(http.StatusNoContent)
}

type broadcastRequest struct {
	Text         string                   `json:"text"`
	Entities     []adapter.MessageEntity  `json:"entities,omitempty"`
	Buttons      [][]adapter.InlineButton `json:"buttons,omitempty"`
	RecipientIDs []int64                  `json:"recipient_ids,omitempty"`
	DelayMS      int64                    `json:"delay_ms,omitempty"`
	ParseMode    string                   `json:"parse_mode,omitempty"`
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	job, err := s.dispatchUC.ScheduleBroadcast(r.Context(), usecase.BroadcastDraft{
		Text:         req.Text,
		Entities:     req.Entities,
		Buttons:      req.Buttons,
		RecipientIDs: req.RecipientIDs,
		Delay:        time.Duration(req.DelayMS) * time.Millisecond,
		ParseMode:    req.ParseMode,
	})
	if err != nil {
		s.writeDispatchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

type remindersRequest struct {
	Date  string `json:"date"` // YYYY-MM-DD, defaults to today
	Title string `json:"title"`
}

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	var req remindersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	date := time.Now().In(s.loc)
	if strings.TrimSpace(req.Date) != "" {
		d, err := time.ParseInLocation(time.DateOnly, req.Date, s.loc)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = d
	}
	job, err := s.dispatchUC.ScheduleReminders(r.Context(), date, req.Title)
	if err != nil {
		s.writeDispatchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) writeDispatchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrRecipientNotFound):
		http.Error(w, "no recipients", http.StatusUnprocessableEntity)
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Msg("schedule dispatch")
		http.Error(w, "Failed to schedule job", http.StatusInternalServerError)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.statsUC.UserStats(r.Context())
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("user stats")
		http.Error(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.exportUC.ExportUsersCSV(r.Context())
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("export users")
		http.Error(w, "Failed to export users", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="users_%s.csv"`, time.Now().In(s.loc).Format("20060102")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
