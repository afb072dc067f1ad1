package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/talantix/portal/internal/entity"
	"github.com/talantix/portal/pkg/i18n"
	"github.com/talantix/portal/pkg/logger"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (entity.User, *entity.UserTokens, error)
	Register(ctx context.Context, firstName, lastName, email, password, confirm string) (entity.User, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*entity.UserTokens, error)
	ApproveRegistration(ctx context.Context, userID uuid.UUID) error
	RejectRegistration(ctx context.Context, userID uuid.UUID) error
	ListUsers(ctx context.Context, search string, limit, offset int) ([]entity.User, error)
}

type CodeService interface {
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword, confirm string) error
	AttemptsLeft(ctx context.Context, email string) (int, error)
	RequestEmailChange(ctx context.Context, userID uuid.UUID, newEmail string) error
	ConfirmEmailChange(ctx context.Context, userID uuid.UUID, code, newEmail string) error
}

type AchievementService interface {
	Submit(
		ctx context.Context, userID uuid.UUID, title, description string,
		category entity.AchievementCategory, level entity.AchievementLevel, documentPath string,
	) (entity.Achievement, error)
	Approve(ctx context.Context, achievementID, moderatorID uuid.UUID) (entity.Achievement, error)
	Reject(ctx context.Context, achievementID, moderatorID uuid.UUID, reason string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Achievement, error)
	ListPending(ctx context.Context, limit, offset int) ([]entity.Achievement, error)
	Leaderboard(ctx context.Context, seasonStart time.Time, limit int) ([]entity.LeaderboardRow, error)
}

type Handler struct {
	auth         AuthService
	codes        CodeService
	achievements AchievementService
	translator   *i18n.Translator
}

func NewHandler(auth AuthService, codes CodeService, achievements AchievementService, translator *i18n.Translator) *Handler {
	return &Handler{
		auth:         auth,
		codes:        codes,
		achievements: achievements,
		translator:   translator,
	}
}

// @Summary Проверка состояния сервиса
// @Tags service
// @Produce json
// @Success 200 {string} string "Сервер работает!"
// @Router  /api/health [get]
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("Сервер работает!\n"))
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
}

func userResponse(u entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
		Status:    string(u.Status),
	}
}

// @Summary Вход по email и паролю
// @Description Выдаёт пару access/refresh токенов. Все ошибки учётных данных возвращают один и тот же ответ.
// @Tags auth
// @Accept  json
// @Produce json
// @Param   request body LoginRequest true "Учётные данные"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} errorResponse "Неверный email или пароль"
// @Failure 403 {object} errorResponse "Аккаунт заблокирован"
// @Failure 429 {object} errorResponse "Слишком много попыток"
// @Router  /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := logger.SetLogType(r.Context(), "auth")

	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, h.message(r, "common.bad_request"))
		return
	}

	user, tokens, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		status, msg := h.authFailure(r, err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(ctx, "login failed", "error", err)
		}

		sendError(w, status, msg)

		return
	}

	sendJSON(w, http.StatusOK, LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		User:         userResponse(user),
	})
}

type RegisterRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// @Summary Заявка на регистрацию
// @Description Создаёт учётную запись студента в статусе pending. Доступ открывается после одобрения модератором.
// @Tags auth
// @Accept  json
// @Produce json
// @Param   request body RegisterRequest true "Данные регистрации"
// @Success 201 {object} MessageResponse
// @Failure 409 {object} errorResponse "Email уже занят"
// @Failure 422 {object} errorResponse "Не пройдена валидация"
// @Router  /api/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := logger.SetLogType(r.Context(), "auth")

	var req RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, h.message(r, "common.bad_request"))
		return
	}

	_, err := h.auth.Register(ctx, req.FirstName, req.LastName, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrAlreadyExists):
			sendError(w, http.StatusConflict, h.message(r, "auth.email_taken"))
		case errors.Is(err, entity.ErrPasswordsDoNotMatch):
			sendError(w, http.StatusUnprocessableEntity, h.message(r, "auth.passwords_do_not_match"))
		case errors.Is(err, entity.ErrEmailInvalidLen), errors.Is(err, entity.ErrEmailInvalidFormat):
			sendError(w, http.StatusUnprocessableEntity, h.message(r, "validation.email"))
		case errors.Is(err, entity.ErrNameInvalidLen), errors.Is(err, entity.ErrNameInvalidFormat):
			sendError(w, http.StatusUnprocessableEntity, h.message(r, "validation.name"))
		case errors.Is(err, entity.ErrPasswordInvalidLen),
			errors.Is(err, entity.ErrPasswordNoUpperCase),
			errors.Is(err, entity.ErrPasswordNoDigit):
			sendError(w, http.StatusUnprocessableEntity, h.message(r, "validation.password"))
		default:
			slog.ErrorContext(ctx, "registration failed", "error", err)
			sendError(w, http.StatusInternalServerError, h.message(r, "common.internal_error"))
		}

		return
	}

	sendJSON(w, http.StatusCreated, MessageResponse{Message: h.message(r, "auth.registered")})
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// @Summary Обновление пары токенов
// @Tags auth
// @Accept  json
// @Produce json
// @Param   request body RefreshRequest true "Refresh-токен"
// @Success 200 {object} entity.UserTokens
// @Failure 401 {object} errorResponse "Недействительный refresh-токен"
// @Router  /api/auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := logger.SetLogType(r.Context(), "auth")

	var req RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, h.message(r, "common.bad_request"))
		return
	}

	tokens, err := h.auth.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		slog.WarnContext(ctx, "refresh rejected", "error", err)
		sendError(w, http.StatusUnauthorized, h.message(r, "auth.invalid_refresh_token"))

		return
	}

	sendJSON(w, http.StatusOK, tokens)
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// @Summary Запрос кода сброса пароля
// @Description Ответ одинаков вне зависимости от существования аккаунта.
// @Tags auth
// @Accept  json
// @Produce json
// @Param   request body ForgotPasswordRequest true "Email аккаунта"
// @Success 200 {object} MessageResponse
// @Failure 429 {object} errorResponse "Повторный запрос раньше кулдауна"
// @Router  /api/auth/password/forgot [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := logger.SetLogType(r.Context(), "auth")

	var req ForgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, h.message(r, "common.bad_request"))
		return
	}

	if err := h.codes.RequestPasswordReset(ctx, req.Email); err != nil {
		var rateErr *entity.RateLimitedError
		if errors.As(err, &rateErr) {
			sendError(w, http.StatusTooManyRequests, h.messagef(r, "auth.rate_limited", rateErr.Seconds()))
			return
		}

		slog.ErrorContext(ctx, "password reset request failed", "error", err)
		sendError(w, http.StatusInternalServerError, h.message(r, "common.internal_error"))

		return
	}

	sendJSON(w, http.StatusOK, MessageResponse{Message: h.message(r, "auth.reset_sent")})
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// @Summary Сброс пароля по коду
// @Tags auth
// @Accept  json
// @Produce json
// @Param   request body ResetPasswordRequest true "Код и новый пароль"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errorResponse "Неверный или просроченный код"
// @Failure 429 {object} errorResponse "Лимит проверок исчерпан"
// @Router  /api/auth/password/reset [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := logger.SetLogType(r.Context(), "auth")

	var req ResetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, h.message(r, "common.bad_request"))
		return
	}

	err := h.codes.ConfirmPasswordReset(ctx, req.Email, req.Code, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrPasswordsDoNotMatch):
			sendError(w, http.StatusUnprocessableEntity, h.message(r, "auth.passwords_do_not_match"))
		case errors.Is(err, entity.ErrPasswordInvalidLen),
			errors.Is(err, entity.ErrPasswordNoUpperCase),
			errors.Is(err, entity.ErrPasswordNoDigit):
			sendError(w, http.StatusUnprocessableEntity, h.message(r, "validation.password"))
		case errors.Is(err, entity.ErrCodeNotFound), errors.Is(err, entity.ErrWrongPurpose):
			// once few attempts remain, say how many, so the caller knows
			// the next miss may block them
			if left, lerr := h.codes.AttemptsLeft(ctx, req.Email); lerr == nil && left > 0 && left <= 2 {
				sendError(w, http.StatusBadRequest, h.messagef(r, "auth.code_attempts_left", left))
				return
			}

			sendError(w, http.StatusBadRequest, h.message(r, "auth.code_invalid"))
		default:
			status, msg := h.codeFailure(r, err)
			if status == http.StatusInternalServerError {
				slog.ErrorContext(ctx, "password reset failed", "error", err)
			}

			sendError(w, status, msg)
		}

		return
	}

	sendJSON(w, http.StatusOK, MessageResponse{Message: h.message(r, "auth.password_changed")})
}

type ChangeEmailRequest struct {
	NewEmail string `json:"new_email"`
}

// @Summary Запрос смены email
// @Description Отправляет код подтверждения на новый адрес.
// @Tags profile
// @Security BearerAuth
// @Accept  json
// @Produce json
// @Param   request body ChangeEmailRequest true "Новый email"
// @Success 200 {object} MessageResponse
// @Failure 409 {object} errorResponse "Email уже занят"
// @Router  /api/profile/email [post]
func (h *Handler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	ctx := logger.SetLogType(r.Context(), "auth")

	userID, ok := currentUserID(ctx)
	if !ok {
		sendError(w, http.StatusUnauthorized, h.message(r, "common.forbidden"))
		return
	}

	var req ChangeEmailRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, h.message(r, "common.bad_request"))
		return
	}

	if err := h.codes.RequestEmailChange(ctx, userID, req.NewEmail); err != nil {
		switch {
		case errors.Is(err, entity.ErrAlreadyExists):
			sendError(w, http.StatusConflict, h.message(r, "auth.email_taken"))
		case errors.Is(err, entity.ErrEmailInvalidLen), errors.Is(err, entity.ErrEmailInvalidFormat):
			sendError(w, http.StatusUnprocessableEntity, h.message(r, "validation.email"))
		default:
			slog.ErrorContext(ctx, "email change request failed", "error", err)
			sendError(w, http.StatusInternalServerError, h.message(r, "common.internal_error"))
		}

		return
	}

	sendJSON(w, http.StatusOK, MessageResponse{Message: h.message(r, "auth.reset_sent")})
}

type ConfirmEmailRequest struct {
	Code     string `json:"code"`
	NewEmail string `json:"new_email"`
}

// @Summary Подтверждение смены email
// @Tags profile
// @Security BearerAuth
// @Accept  json
// @Produce json
// @Param   request body ConfirmEmailRequest true "Код и новый email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errorResponse "Неверный или просроченный код"
// @Router  /api/profile/email/confirm [post]
func (h *Handler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	ctx := logger.SetLogType(r.Context(), "auth")

	userID, ok := currentUserID(ctx)
	if !ok {
		sendError(w, http.StatusUnauthorized, h.message(r, "common.forbidden"))
		return
	}

	var req ConfirmEmailRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, h.message(r, "common.bad_request"))
		return
	}

	if err := h.codes.ConfirmEmailChange(ctx, userID, req.Code, req.NewEmail); err != nil {
		if errors.Is(err, entity.ErrAlreadyExists) {
			sendError(w, http.StatusConflict, h.message(r, "auth.email_taken"))
			return
		}

		status, msg := h.codeFailure(r, err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(ctx, "email change failed", "error", err)
		}

		sendError(w, status, msg)

		return
	}

	sendJSON(w, http.StatusOK, MessageResponse{Message: h.message(r, "auth.email_changed")})
}

type SubmitAchievementRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Level        string `json:"level"`
	DocumentPath string `json:"document_path"`
}

type AchievementResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Level           string    `json:"level"`
	Status          string    `json:"status"`
	Points          int       `json:"points"`
	DocumentPath    string    `json:"document_path,omitempty"`
	RejectionReason *string   `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func achievementResponse(a entity.Achievement) AchievementResponse {
	return AchievementResponse{
		ID:              a.ID,
		UserID:          a.UserID,
		Title:           a.Title,
		Description:     a.Description,
		Category:        string(a.Category),
		Level:           string(a.Level),
		Status:          string(a.Status),
		Points:          a.Points,
		DocumentPath:    a.DocumentPath,
		RejectionReason: a.RejectionReason,
		CreatedAt:       a.CreatedAt,
	}
}

func achievementResponses(items []entity.Achievement) []AchievementResponse {
	out := make([]AchievementResponse, 0, len(items))
	for _, a := range items {
		out = append(out, achievementResponse(a))
	}

	return out
}

// @Summary Подать достижение на модерацию
// @Tags achievements
// @Security BearerAuth
// @Accept  json
// @Produce json
// @Param   request body SubmitAchievementRequest true "Достижение"
// @Success 201 {object} AchievementResponse
// @Router  /api/achievements [post]
func (h *Handler) SubmitAchievement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := currentUserID(ctx)
	if !ok {
		sendError(w, http.StatusUnauthorized, h.message(r, "common.forbidden"))
		return
	}

	var req SubmitAchievementRequest
	if err := decodeBody(r, &req); err != nil {
		sendError(w, http.StatusBadRequest, h.message(r, "common.bad_request"))
		return
	}

	a, err := h.achievements.Submit(
		ctx, userID, req.Title, req.Description,
		entity.AchievementCategory(req.Category), entity.AchievementLevel(req.Level), req.DocumentPath,
	)
	if err != nil {
		if errors.Is(err, entity.ErrNameInvalidLen) {
			sendError(w, http.StatusUnprocessableEntity, h.message(r, "validation.name"))
			return
		}

		slog.ErrorContext(ctx, "achievement submit failed", "error", err)
		sendError(w, http.StatusInternalServerError, h.message(r, "common.internal_error"))

		return
	}

	sendJSON(w, http.StatusCreated, achievementResponse(a))
}

// @Summary Мои достижения
// @Tags achievements
// @Security BearerAuth
// @Produce json
// @Success 200 {array} AchievementResponse
// @Router  /api/achievements [get]
func (h *Handler) MyAchievements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := currentUserID(ctx)
	if !ok {
		sendError(w, http.StatusUnauthorized, h.message(r, "common.forbidden"))
		return
	}

	items, err := h.achievements.ListByUser(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list achievements", "error", err)
		sendError(w, http.StatusInternalServerError, h.message(r, "common.internal_error"))

		return
	}

	sendJSON(w, http.StatusOK, achievementResponses(items))
}

// @Summary Очередь модерации достижений
// @Tags moderation
// @Security BearerAuth
// @Produce json
// @Param   limit  query int false "Размер страницы" default(20)
// @Param   offset query int false "Смещение" default(0)
// @Success 200 {array} AchievementResponse
// @Router  /api/moderation/achievements [get]
func (h *Handler) PendingAchievements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset := pageParams(r, 20)

	items, err := h.achievements.ListPending(ctx, limit, offset)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list pending achievements", "error", err)
		sendError(w, http.StatusInternalServerError, h.message(r, "common.internal_error"))

		return
	}

	sendJSON(w, http.StatusOK, achievementResponses(items))
}

// @Summary Одобрить достижение
// @Description Начисляет баллы по уровню достижения.
// @Tags moderation
// @Security BearerAuth
// @Produce json
// @Param   id path string true "ID достижения"
// @Success 200 {object} AchievementResponse
// @Failure 404 {object} errorResponse "Не найдено"
// @Failure 409 {object} errorResponse "Достижение уже рассмотрено"
// @Router  /api/moderation/achievements/{id}/approve [post]
func (h *Handler) ApproveAchievement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	moderatorID, ok := currentUserID(ctx)
	if !ok {
		sendError(w, http.StatusUnauthorized, h.message(r, "common.forbidden"))
		return
	}

	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		sendError(w, http.StatusBadRequest, h.message(r, "common.bad_request"))
		return
	}

	a, err := h.achievements.Approve(ctx, id, moderatorID)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrNotFound):
			sendError(w, http.StatusNotFound, h.message(r, "common.not_found"))
		case errors.Is(err, entity.ErrAchievementNotPending):
			sendError(w, http.StatusConflict, h.message(r, "common.bad_request"))
		default:
			slog.ErrorContext(ctx, "achievement approve failed", "error", err)
			sendError(w, http.StatusInternalServerError, h.message(r, "common.internal_error"))
		}

		return
	}

	sendJSON(w, http.StatusOK, achievementResponse(a))
}

type RejectAchievementRequest struct {
	Reason string `json:"reason"`
}

// @Summary Отклонить достижение
// @Tags moderation
// @Security BearerAuth
// @Accept  json
// @Produce json
// @Param   id path string true "ID достижения"
// @Param   request body RejectAchievementRequest true "Причина отклонения"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errorResponse "Не найдено"
// @Router  /api/moderation/achievements/{id}/reject [post]
func (h *Handler) RejectAchievement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	moderatorID, ok := currentUserID(ctx)
	if !ok {
		sendError(w, http.StatusUnauthorized, h.message(r, "common.forbidden"))
		return
	}

	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		sendError(w, http.StatusBadRequest, h.message(r, "common.bad_request"))
		return
	}

	var req RejectAchievementRequest
	if err := decodeBody(r, &req); err != nil || req.Reason == "" {
		sendError(w, http.StatusBadRequest, h.message(r, "common.bad_request"))
		return
	}

	if err := h.achievements.Reject(ctx, id, moderatorID, req.Reason); err != nil {
		switch {
		case errors.Is(err, entity.ErrNotFound):
			sendError(w, http.StatusNotFound, h.message(r, "common.not_found"))
		case errors.Is(err, entity.ErrAchievementNotPending):
			sendError(w, http.StatusConflict, h.message(r, "common.bad_request"))
		default:
			slog.ErrorContext(ctx, "achievement reject failed", "error", err)
			sendError(w, http.StatusInternalServerError, h.message(r, "common.internal_error"))
		}

		return
	}

	sendJSON(w, http.StatusOK, MessageResponse{Message: h.message(r, "achievement.rejected")})
}

type LeaderboardEntry struct {
	Rank      int       `json:"rank"`
	UserID    uuid.UUID `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Points    int       `json:"points"`
}

// @Summary Рейтинг студентов за сезон
// @Description Сумма баллов за одобренные достижения с начала учебного года.
// @Tags achievements
// @Produce json
// @Param   limit query int false "Размер рейтинга" default(50)
// @Success 200 {array} LeaderboardEntry
// @Router  /api/leaderboard [get]
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, _ := pageParams(r, 50)

	rows, err := h.achievements.Leaderboard(ctx, seasonStart(time.Now()), limit)
	if err != nil {
		slog.ErrorContext(ctx, "leaderboard query failed", "error", err)
		sendError(w, http.StatusInternalServerError, h.message(r, "common.internal_error"))

		return
	}

	out := make([]LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, LeaderboardEntry{
			Rank:      row.Rank,
			UserID:    row.UserID,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Points:    row.Points,
		})
	}

	sendJSON(w, http.StatusOK, out)
}

// @Summary Список пользователей
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param   search query string false "Поиск по имени или email"
// @Param   limit  query int    false "Размер страницы" default(20)
// @Param   offset query int    false "Смещение" default(0)
// @Success 200 {array} UserResponse
// @Router  /api/admin/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset := pageParams(r, 20)

	users, err := h.auth.ListUsers(ctx, r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list users", "error", err)
		sendError(w, http.StatusInternalServerError, h.message(r, "common.internal_error"))

		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse(u))
	}

	sendJSON(w, http.StatusOK, out)
}

// @Summary Одобрить заявку на регистрацию
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param   id path string true "ID пользователя"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errorResponse "Не найдено"
// @Router  /api/admin/users/{id}/approve [post]
func (h *Handler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	h.moderateUser(w, r, h.auth.ApproveRegistration)
}

// @Summary Отклонить заявку на регистрацию
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param   id path string true "ID пользователя"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errorResponse "Не найдено"
// @Router  /api/admin/users/{id}/reject [post]
func (h *Handler) RejectUser(w http.ResponseWriter, r *http.Request) {
	h.moderateUser(w, r, h.auth.RejectRegistration)
}

func (h *Handler) moderateUser(w http.ResponseWriter, r *http.Request, action func(context.Context, uuid.UUID) error) {
	ctx := logger.SetLogType(r.Context(), "auth")

	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		sendError(w, http.StatusBadRequest, h.message(r, "common.bad_request"))
		return
	}

	if err := action(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			sendError(w, http.StatusNotFound, h.message(r, "common.not_found"))
			return
		}

		slog.ErrorContext(ctx, "user moderation failed", "error", err)
		sendError(w, http.StatusInternalServerError, h.message(r, "common.internal_error"))

		return
	}

	sendJSON(w, http.StatusOK, MessageResponse{Message: "ok"})
}

func currentUserID(ctx context.Context) (uuid.UUID, bool) {
	raw := entity.UserIDFromCtx(ctx)
	if raw == "" {
		return uuid.Nil, false
	}

	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

func pageParams(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit

	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}

	return limit, offset
}

// seasonStart is September 1st of the current academic year.
func seasonStart(now time.Time) time.Time {
	year := now.Year()
	if now.Month() < time.September {
		year--
	}

	return time.Date(year, time.September, 1, 0, 0, 0, 0, now.Location())
}
