package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/talantix/portal/internal/entity"
)

type errorResponse struct {
	Error string `json:"error"`
}

func sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func sendError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, errorResponse{Error: message})
}

// authFailure maps an authentication error to a status code and a localized
// message. Wrong password, unknown account and rejected account all collapse
// into the same generic message so the response does not reveal which
// accounts exist. Lockout and throttling responses do carry the wait time:
// the caller already knows they are blocked, hiding the duration only
// generates support load.
func (h *Handler) authFailure(r *http.Request, err error) (int, string) {
	locale := entity.LocaleFromCtx(r.Context())

	var lockedErr *entity.LockedError
	if errors.As(err, &lockedErr) {
		return http.StatusForbidden, h.translator.Getf(locale, "auth.account_locked", lockedErr.Minutes())
	}

	var rateErr *entity.RateLimitedError
	if errors.As(err, &rateErr) {
		return http.StatusTooManyRequests, h.translator.Getf(locale, "auth.rate_limited", rateErr.Seconds())
	}

	switch {
	case errors.Is(err, entity.ErrUserDeleted):
		return http.StatusForbidden, h.translator.Get(locale, "auth.account_deleted")
	case errors.Is(err, entity.ErrNotFound),
		errors.Is(err, entity.ErrWrongPassword),
		errors.Is(err, entity.ErrUserRejected):
		return http.StatusUnauthorized, h.translator.Get(locale, "auth.invalid_credentials")
	}

	return http.StatusInternalServerError, h.translator.Get(locale, "common.internal_error")
}

func (h *Handler) codeFailure(r *http.Request, err error) (int, string) {
	locale := entity.LocaleFromCtx(r.Context())

	var rateErr *entity.RateLimitedError
	if errors.As(err, &rateErr) {
		return http.StatusTooManyRequests, h.translator.Getf(locale, "auth.rate_limited", rateErr.Seconds())
	}

	switch {
	case errors.Is(err, entity.ErrCodeExpired):
		return http.StatusBadRequest, h.translator.Get(locale, "auth.code_expired")
	case errors.Is(err, entity.ErrCodeNotFound), errors.Is(err, entity.ErrWrongPurpose):
		return http.StatusBadRequest, h.translator.Get(locale, "auth.code_invalid")
	}

	return http.StatusInternalServerError, h.translator.Get(locale, "common.internal_error")
}

func (h *Handler) message(r *http.Request, key string) string {
	return h.translator.Get(entity.LocaleFromCtx(r.Context()), key)
}

func (h *Handler) messagef(r *http.Request, key string, args ...any) string {
	return h.translator.Getf(entity.LocaleFromCtx(r.Context()), key, args...)
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()

	return json.NewDecoder(r.Body).Decode(dst)
}
