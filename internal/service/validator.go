package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/talantix/portal/internal/entity"
)

const (
	EmailMaxLen    = 255
	NameMinLen     = 2
	NameMaxLen     = 50
	PasswordMinLen = 8
	PasswordMaxLen = 64
)

var (
	emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Zа-яА-Я0-9.-]+\.[a-zA-Zа-яА-Я]{2,}$`)
	nameRegexp  = regexp.MustCompile(`^[а-яёА-ЯЁa-zA-Z]+([\s-][а-яёА-ЯЁa-zA-Z]+)*$`)
	spaceRegexp = regexp.MustCompile(`\s+`)
)

func ValidateEmail(email string) error {
	if len(email) > EmailMaxLen {
		return entity.ErrEmailInvalidLen
	}

	if !emailRegexp.MatchString(email) {
		return entity.ErrEmailInvalidFormat
	}

	if strings.Contains(email, "..") {
		return entity.ErrEmailInvalidFormat
	}

	return nil
}

func ValidateName(name string) error {
	nameLen := utf8.RuneCountInString(name)
	if nameLen < NameMinLen || nameLen > NameMaxLen {
		return entity.ErrNameInvalidLen
	}

	if !nameRegexp.MatchString(name) {
		return entity.ErrNameInvalidFormat
	}

	return nil
}

func ValidatePassword(password string) error {
	passLen := utf8.RuneCountInString(password)
	if passLen < PasswordMinLen || passLen > PasswordMaxLen {
		return entity.ErrPasswordInvalidLen
	}

	var hasUpper, hasDigit bool

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		return entity.ErrPasswordNoUpperCase
	}

	if !hasDigit {
		return entity.ErrPasswordNoDigit
	}

	return nil
}

// NormalizeEmail strips decorations users paste in with their address and
// lowercases it for the case-insensitive lookup.
func NormalizeEmail(email string) (string, error) {
	normalized := strings.TrimSpace(email)
	normalized = strings.ToLower(normalized)

	for _, c := range []string{"(", ")", "[", "]", "<", ">"} {
		normalized = strings.ReplaceAll(normalized, c, "")
	}

	normalized = spaceRegexp.ReplaceAllString(normalized, "")

	if err := ValidateEmail(normalized); err != nil {
		return "", err
	}

	return normalized, nil
}
