package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/talantix/portal/docs" // Для генерации Swagger-документации
	"github.com/talantix/portal/internal/entity"
)

func NewRouter(h *Handler, mw *Middleware) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("/api/health", h.Health)

	router.HandleFunc("POST /api/auth/login", h.Login)
	router.HandleFunc("POST /api/auth/register", h.Register)
	router.HandleFunc("POST /api/auth/refresh", h.Refresh)
	router.HandleFunc("POST /api/auth/password/forgot", h.ForgotPassword)
	router.HandleFunc("POST /api/auth/password/reset", h.ResetPassword)

	router.HandleFunc("GET /api/leaderboard", h.Leaderboard)

	authed := func(handlerFunc http.HandlerFunc) http.Handler {
		return mw.Auth(handlerFunc)
	}

	moderators := mw.RequireRole(entity.RoleModerator, entity.RoleSuperAdmin)

	router.Handle("POST /api/profile/email", authed(h.ChangeEmail))
	router.Handle("POST /api/profile/email/confirm", authed(h.ConfirmEmail))

	router.Handle("POST /api/achievements", authed(h.SubmitAchievement))
	router.Handle("GET /api/achievements", authed(h.MyAchievements))

	router.Handle("GET /api/moderation/achievements", mw.Auth(moderators(http.HandlerFunc(h.PendingAchievements))))
	router.Handle("POST /api/moderation/achievements/{id}/approve", mw.Auth(moderators(http.HandlerFunc(h.ApproveAchievement))))
	router.Handle("POST /api/moderation/achievements/{id}/reject", mw.Auth(moderators(http.HandlerFunc(h.RejectAchievement))))

	router.Handle("GET /api/admin/users", mw.Auth(moderators(http.HandlerFunc(h.ListUsers))))
	router.Handle("POST /api/admin/users/{id}/approve", mw.Auth(moderators(http.HandlerFunc(h.ApproveUser))))
	router.Handle("POST /api/admin/users/{id}/reject", mw.Auth(moderators(http.HandlerFunc(h.RejectUser))))

	router.HandleFunc("/api/swagger/", httpSwagger.WrapHandler)

	handler := use(router, mw.Recover, mw.Cors, mw.WithIP, mw.WithLocale, mw.Log)

	return handler
}

func use(handler http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}

	return handler
}
