package account

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeValidation        = "VALIDATION_FAILED"
	TextCodeProviderFailed    = "PROVIDER_FAILED"
	TextCodeInconsistentState = "INCONSISTENT_STATE"
	TextCodeNotFound          = "NOT_FOUND"
)

// Fixed messages. These are user facing and asserted verbatim by callers.
const (
	MsgCredentialsRequired = "Email dan password tidak boleh kosong"
	MsgEmailFormat         = "Format email salah"
	MsgSignInPasswordShort = "Password seharusnya 6 karakter atau lebih"
	MsgSignInFailed        = "Login gagal"
	MsgSignInFallback      = "Terjadi permasalahan pada saat login"

	MsgAllFieldsRequired   = "Semua kolom wajib diisi"
	MsgNameTooShort        = "Nama Minimal 3 karakter"
	MsgSignUpPasswordShort = "Password minimal 6 karakter"
	MsgSignUpFallback      = "Register gagal"
	MsgSignUpProfileEmpty  = "Register berhasil dilakukan tetapi data user kosong"
	MsgSaveProfileFailed   = "Gagal menyimpan data pengguna"

	MsgEmailRequired       = "Email tidak boleh kosong"
	MsgPasswordResetFailed = "Gagal mengirim reset password ke email"
	MsgVerificationFailed  = "Gagal mengirimkan verifikasi email"

	MsgReloadEmpty    = "Gagal menampilkan data pengguna"
	MsgReloadFallback = "Terjadi permasalahan saat menampilkan data pengguna"

	MsgDirectoryFallback = "Gagal menampilkan data seluruh pengguna"
	MsgUserUnknown       = "Pengguna tidak diketahui"
	MsgUpdateFailed      = "Gagal mengubah data pengguna"

	MsgSignOutFailed = "Gagal keluar dari akun"
	MsgFormInvalid   = "Silakan isi kolom dengan benar"
)

// ValidationError is a local failure raised before any provider call.
func ValidationError(msg string) error {
	return goerrors.New(msg, goerrors.CategoryValidation).
		WithTextCode(TextCodeValidation).
		WithCode(goerrors.CodeBadRequest)
}

// IdentityError wraps a failure from the identity provider. The provider
// message is kept when it has one, otherwise fallback is used.
func IdentityError(err error, fallback string) error {
	return providerError(err, goerrors.CategoryAuth, fallback, "identity")
}

// DirectoryError wraps a failure from the profile store.
func DirectoryError(err error, fallback string) error {
	return providerError(err, goerrors.CategoryOperation, fallback, "directory")
}

// InconsistentStateError reports a provider call that succeeded without
// the payload it was expected to return.
func InconsistentStateError(msg string) error {
	return goerrors.New(msg, goerrors.CategoryInternal).
		WithTextCode(TextCodeInconsistentState)
}

// NotFoundError reports a lookup that found nothing.
func NotFoundError(msg string) error {
	return goerrors.New(msg, goerrors.CategoryNotFound).
		WithTextCode(TextCodeNotFound).
		WithCode(goerrors.CodeNotFound)
}

func providerError(err error, category goerrors.Category, fallback, source string) error {
	msg := strings.TrimSpace(messageOf(err))
	if msg == "" {
		msg = fallback
	}

	// rich errors from adapters are often package sentinels, so they are
	// never decorated in place
	var richErr *goerrors.Error
	if err == nil || goerrors.As(err, &richErr) {
		return goerrors.New(msg, category).
			WithTextCode(TextCodeProviderFailed).
			WithMetadata(map[string]any{"source": source})
	}

	return goerrors.Wrap(err, category, msg).
		WithTextCode(TextCodeProviderFailed).
		WithMetadata(map[string]any{"source": source})
}

// IsValidationError reports whether err came from local validation.
func IsValidationError(err error) bool {
	return hasTextCode(err, TextCodeValidation)
}

// IsProviderError reports whether err came from one of the ports.
func IsProviderError(err error) bool {
	return hasTextCode(err, TextCodeProviderFailed)
}

// IsInconsistentStateError reports whether err is a missing payload error.
func IsInconsistentStateError(err error) bool {
	return hasTextCode(err, TextCodeInconsistentState)
}

func hasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	if err == nil || !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}
