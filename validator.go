package account

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"
)

// ValidationState is the evaluation state of a single rule.
type ValidationState string

const (
	// StateNone means the input is empty and the rule was not evaluated.
	StateNone    ValidationState = "NONE"
	StateValid   ValidationState = "VALID"
	StateInvalid ValidationState = "INVALID"
)

// FieldValidation is the outcome of one rule on one field, with the
// message shown next to the field.
type FieldValidation struct {
	Message string          `json:"message"`
	State   ValidationState `json:"state"`
}

// FieldRule pairs a user facing message with an ozzo rule.
type FieldRule struct {
	Message string
	Rule    validation.Rule
}

// EmailPattern is the accepted email syntax.
var EmailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

const (
	MinPasswordLength = 6
	MinNameLength     = 3
)

// Rule messages shown in the registration form.
const (
	RuleNameLength       = "Nama Minimal 3 karakter"
	RuleNameNoDigit      = "Nama tidak mengandung angka"
	RuleEmailRequired    = "Email tidak boleh kosong"
	RuleEmailFormat      = "Email harus menggunakan format yang valid"
	RulePasswordLength   = "Password minimal 6 karakter"
	RulePasswordLower    = "Password mengandung huruf kecil"
	RulePasswordUpper    = "Password mengandung huruf besar"
	RulePasswordDigit    = "Password mengandung angka"
	RulePasswordNoSpace  = "Password tidak mengandung spasi"
	RuleConfirmPassword  = "Konfirmasi Password sama dengan Password"
	RuleSignInPassLength = "Password seharusnya 6 karakter atau lebih"
)

var (
	errNoMatch    = errors.New("no match")
	errHasDigit   = errors.New("contains a digit")
	errHasSpace   = errors.New("contains a space")
	errNotEqual   = errors.New("values differ")
	errEmptyValue = errors.New("empty value")
)

// Validator evaluates field rules. It holds no state.
type Validator struct{}

// IsValidEmail reports whether email matches EmailPattern.
func IsValidEmail(email string) bool {
	return EmailPattern.MatchString(email)
}

// Email evaluates the email format rule alone.
func (Validator) Email(email string) ValidationState {
	return evaluate(email, FieldRule{Message: RuleEmailFormat, Rule: validation.Match(EmailPattern)})
}

// EmailRules returns the registration email rules.
func (Validator) EmailRules(email string) []FieldValidation {
	return Evaluate(email,
		FieldRule{Message: RuleEmailRequired, Rule: validation.By(notEmpty)},
		FieldRule{Message: RuleEmailFormat, Rule: validation.Match(EmailPattern)},
	)
}

// NameRules returns the registration name rules.
func (Validator) NameRules(name string) []FieldValidation {
	return Evaluate(name,
		FieldRule{Message: RuleNameLength, Rule: validation.RuneLength(MinNameLength, 0)},
		FieldRule{Message: RuleNameNoDigit, Rule: validation.By(containsNone(unicode.IsDigit, errHasDigit))},
	)
}

// PasswordRules returns the five composition rules applied at sign up.
func (Validator) PasswordRules(password string) []FieldValidation {
	return Evaluate(password,
		FieldRule{Message: RulePasswordLength, Rule: validation.RuneLength(MinPasswordLength, 0)},
		FieldRule{Message: RulePasswordLower, Rule: validation.By(containsAny(unicode.IsLower))},
		FieldRule{Message: RulePasswordUpper, Rule: validation.By(containsAny(unicode.IsUpper))},
		FieldRule{Message: RulePasswordDigit, Rule: validation.By(containsAny(unicode.IsDigit))},
		FieldRule{Message: RulePasswordNoSpace, Rule: validation.By(noSpace)},
	)
}

// SignInPasswordRules only gates on length; composition is enforced when
// the password is created.
func (Validator) SignInPasswordRules(password string) []FieldValidation {
	return Evaluate(password,
		FieldRule{Message: RuleSignInPassLength, Rule: validation.RuneLength(MinPasswordLength, 0)},
	)
}

// ConfirmPasswordRules checks confirm against the live password value.
func (Validator) ConfirmPasswordRules(password, confirm string) []FieldValidation {
	return Evaluate(confirm,
		FieldRule{Message: RuleConfirmPassword, Rule: validation.By(equals(password))},
	)
}

// Evaluate runs every rule against value. An empty value yields StateNone
// for every rule.
func Evaluate(value string, rules ...FieldRule) []FieldValidation {
	out := make([]FieldValidation, 0, len(rules))
	for _, r := range rules {
		out = append(out, FieldValidation{Message: r.Message, State: evaluate(value, r)})
	}
	return out
}

func evaluate(value string, r FieldRule) ValidationState {
	if value == "" {
		return StateNone
	}
	if err := validation.Validate(value, r.Rule); err != nil {
		return StateInvalid
	}
	return StateValid
}

// FieldValid reports whether a field has rules and all of them are valid.
func FieldValid(v []FieldValidation) bool {
	if len(v) == 0 {
		return false
	}
	for _, fv := range v {
		if fv.State != StateValid {
			return false
		}
	}
	return true
}

// FormValid is the conjunction of FieldValid over every tracked field.
func FormValid(fields ...[]FieldValidation) bool {
	for _, f := range fields {
		if !FieldValid(f) {
			return false
		}
	}
	return len(fields) > 0
}

func stringValue(value any) string {
	s, _ := value.(string)
	return s
}

func notEmpty(value any) error {
	if stringValue(value) == "" {
		return errEmptyValue
	}
	return nil
}

func noSpace(value any) error {
	if strings.Contains(stringValue(value), " ") {
		return errHasSpace
	}
	return nil
}

func containsAny(pred func(rune) bool) validation.RuleFunc {
	return func(value interface{}) error {
		for _, r := range stringValue(value) {
			if pred(r) {
				return nil
			}
		}
		return errNoMatch
	}
}

func containsNone(pred func(rune) bool, err error) validation.RuleFunc {
	return func(value interface{}) error {
		for _, r := range stringValue(value) {
			if pred(r) {
				return err
			}
		}
		return nil
	}
}

func equals(expected string) validation.RuleFunc {
	return func(value interface{}) error {
		if stringValue(value) != expected {
			return errNotEqual
		}
		return nil
	}
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
