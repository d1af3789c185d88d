package auth

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Minimum field lengths of the login form, counted in characters.
const (
	MinUsernameLength = 3
	MinPasswordLength = 6
	MinBranchLength   = 3
)

// DefaultBranchNo pre-fills the branch field.
const DefaultBranchNo = "001"

// Form is the submitted login form.
type Form struct {
	Username string
	Password string
	BranchNo string
}

// FieldError is a single inline form error.
type FieldError struct {
	Field string
	Min   int
	// Message is shown under the field.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s must be at least %d characters", e.Field, e.Min)
}

// FieldErrors is keyed by form field name.
type FieldErrors map[string]FieldError

// ValidationError is returned by Login when the form is invalid. No
// request is made to the web panel in that case.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range []string{"username", "password", "branchNo"} {
		if fe, ok := e.Fields[f]; ok {
			parts = append(parts, fe.Error())
		}
	}
	return "invalid login form: " + strings.Join(parts, "; ")
}

// ValidateForm checks the minimum lengths and returns nil when the form
// is acceptable.
func ValidateForm(f Form) FieldErrors {
	errs := FieldErrors{}
	if utf8.RuneCountInString(f.Username) < MinUsernameLength {
		errs["username"] = FieldError{Field: "username", Min: MinUsernameLength, Message: "Kullanıcı adı en az 3 karakter olmalıdır."}
	}
	if utf8.RuneCountInString(f.Password) < MinPasswordLength {
		errs["password"] = FieldError{Field: "password", Min: MinPasswordLength, Message: "Şifre en az 6 karakter olmalıdır."}
	}
	if utf8.RuneCountInString(f.BranchNo) < MinBranchLength {
		errs["branchNo"] = FieldError{Field: "branchNo", Min: MinBranchLength, Message: "Şube numarası en az 3 karakter olmalıdır."}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
