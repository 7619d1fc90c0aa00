package user

import (
	"net/mail"
	"strings"

	"storefront-core/internal/pkg/errs"
)

var ErrInvalidEmail = errs.New("invalid email address")

type Email struct {
	value string
}

func NewEmail(raw string) (Email, error) {
	trimmed := strings.TrimSpace(strings.ToLower(raw))
	if trimmed == "" {
		return Email{}, ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: trimmed}, nil
}

func (e Email) String() string {
	return e.value
}

func (e Email) IsEmpty() bool {
	return e.value == ""
}
