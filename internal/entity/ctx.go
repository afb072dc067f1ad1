package entity

import (
	"context"
)

type (
	CtxKeyIP     struct{}
	CtxKeyUserID struct{}
	CtxKeyRole   struct{}
	CtxKeyLocale struct{}
)

func IPFromCtx(ctx context.Context) string {
	ip, ok := ctx.Value(CtxKeyIP{}).(string)
	if !ok {
		return ""
	}

	return ip
}

func UserIDFromCtx(ctx context.Context) string {
	id, ok := ctx.Value(CtxKeyUserID{}).(string)
	if !ok {
		return ""
	}

	return id
}

func RoleFromCtx(ctx context.Context) UserRole {
	role, ok := ctx.Value(CtxKeyRole{}).(UserRole)
	if !ok {
		return RoleGuest
	}

	return role
}

// LocaleFromCtx returns the request locale, defaulting to Russian
// which is the platform's primary language.
func LocaleFromCtx(ctx context.Context) string {
	locale, ok := ctx.Value(CtxKeyLocale{}).(string)
	if !ok || locale == "" {
		return "ru"
	}

	return locale
}
