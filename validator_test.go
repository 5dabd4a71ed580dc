package account_test

import (
	"testing"

	account "github.com/goliatone/go-account"
	"github.com/stretchr/testify/assert"
)

func states(v []account.FieldValidation) []account.ValidationState {
	out := make([]account.ValidationState, 0, len(v))
	for _, fv := range v {
		out = append(out, fv.State)
	}
	return out
}

func TestValidatorEmail(t *testing.T) {
	var v account.Validator

	tests := []struct {
		email    string
		expected account.ValidationState
	}{
		{"", account.StateNone},
		{"user@example.com", account.StateValid},
		{"first.last+tag@mail.example.co", account.StateValid},
		{"invalid-email", account.StateInvalid},
		{"user@example", account.StateInvalid},
		{"user@example.c", account.StateInvalid},
		{"user name@example.com", account.StateInvalid},
		{"@example.com", account.StateInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.expected, v.Email(tt.email))
			assert.Equal(t, tt.expected == account.StateValid, account.IsValidEmail(tt.email))
		})
	}
}

func TestValidatorPasswordRules(t *testing.T) {
	var v account.Validator
	N, V, I := account.StateNone, account.StateValid, account.StateInvalid

	tests := []struct {
		name     string
		password string
		expected []account.ValidationState
	}{
		{"empty is not evaluated", "", []account.ValidationState{N, N, N, N, N}},
		{"all rules pass", "Secret1", []account.ValidationState{V, V, V, V, V}},
		{"too short", "Ab1", []account.ValidationState{I, V, V, V, V}},
		{"missing upper", "secret1", []account.ValidationState{V, V, I, V, V}},
		{"missing lower", "SECRET1", []account.ValidationState{V, I, V, V, V}},
		{"missing digit", "Secrets", []account.ValidationState{V, V, V, I, V}},
		{"has space", "Sec ret1", []account.ValidationState{V, V, V, V, I}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := v.PasswordRules(tt.password)
			assert.Len(t, rules, 5)
			assert.Equal(t, tt.expected, states(rules))
		})
	}
}

func TestValidatorSignInPasswordOnlyChecksLength(t *testing.T) {
	var v account.Validator

	assert.Equal(t, []account.ValidationState{account.StateValid}, states(v.SignInPasswordRules("password")))
	assert.Equal(t, []account.ValidationState{account.StateInvalid}, states(v.SignInPasswordRules("pass")))
	assert.Equal(t, []account.ValidationState{account.StateNone}, states(v.SignInPasswordRules("")))
}

func TestValidatorNameRules(t *testing.T) {
	var v account.Validator

	assert.Equal(t, []account.ValidationState{account.StateNone, account.StateNone}, states(v.NameRules("")))
	assert.Equal(t, []account.ValidationState{account.StateValid, account.StateValid}, states(v.NameRules("Diva")))
	assert.Equal(t, []account.ValidationState{account.StateInvalid, account.StateValid}, states(v.NameRules("Di")))
	assert.Equal(t, []account.ValidationState{account.StateValid, account.StateInvalid}, states(v.NameRules("Diva2")))
}

func TestValidatorConfirmPassword(t *testing.T) {
	var v account.Validator

	assert.Equal(t, account.StateNone, v.ConfirmPasswordRules("Secret1", "")[0].State)
	assert.Equal(t, account.StateValid, v.ConfirmPasswordRules("Secret1", "Secret1")[0].State)
	assert.Equal(t, account.StateInvalid, v.ConfirmPasswordRules("Secret1", "Secret2")[0].State)
}

func TestFormValid(t *testing.T) {
	valid := []account.FieldValidation{{State: account.StateValid}}
	none := []account.FieldValidation{{State: account.StateNone}}

	assert.True(t, account.FormValid(valid, valid))
	assert.False(t, account.FormValid(valid, none), "NONE must not count as valid")
	assert.False(t, account.FormValid(valid, nil), "a field without rules is not valid")
	assert.False(t, account.FormValid())
}
