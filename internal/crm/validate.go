package crm

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength         = 20
	maxCategoryNameLength = 30
	maxUsernameLength     = 150
	maxPhoneLength        = 20
	maxAccountNameLength  = 150
	maxAge                = 150
)

func validateName(errs fieldErrors, field, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		errs.add(field, "is required")
	case utf8.RuneCountInString(value) > maxNameLength:
		errs.add(field, "must be at most 20 characters")
	}
}

func validateAccountName(errs fieldErrors, field, value string) {
	if utf8.RuneCountInString(value) > maxAccountNameLength {
		errs.add(field, "must be at most 150 characters")
	}
}

func validateEmail(errs fieldErrors, field, value string, required bool) {
	if value == "" {
		if required {
			errs.add(field, "is required")
		}
		return
	}

	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		errs.add(field, "must be a valid email address")
	}
}

func validateUsername(errs fieldErrors, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		errs.add("username", "is required")
	case utf8.RuneCountInString(value) > maxUsernameLength:
		errs.add("username", "must be at most 150 characters")
	case strings.ContainsAny(value, " \t\r\n"):
		errs.add("username", "must not contain whitespace")
	}
}

func validateCategoryName(errs fieldErrors, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		errs.add("name", "is required")
	case utf8.RuneCountInString(value) > maxCategoryNameLength:
		errs.add("name", "must be at most 30 characters")
	}
}
