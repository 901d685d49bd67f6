package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"yamdb/internal/apperr"
	"yamdb/internal/http-api/repository"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	maxEmailLength    = 254
	maxUsernameLength = 20
	maxNameLength     = 150
	maxBioLength      = 500
	maxSlugLength     = 15
	maxTitleLength    = 100
)

var validate = validator.New()

// NormalizeEmail trims the address and lowercases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

func maxLengthMessage(max int) string {
	return fmt.Sprintf("ensure this field has no more than %d characters", max)
}

// notFound converts gorm's missing-record error into a NotFound error.
func notFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(message)
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}
