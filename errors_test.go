package account_test

import (
	"errors"
	"testing"

	account "github.com/goliatone/go-account"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")

	err := account.DirectoryError(cause, account.MsgDirectoryFallback)

	assert.True(t, account.IsProviderError(err))
	assert.False(t, account.IsValidationError(err))

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, "connection reset", richErr.Message)
	assert.Equal(t, goerrors.CategoryOperation, richErr.Category)
	assert.Equal(t, "directory", richErr.Metadata["source"])
}

func TestProviderErrorDoesNotMutateRichSentinel(t *testing.T) {
	sentinel := goerrors.New("akun tidak ditemukan", goerrors.CategoryNotFound).WithTextCode("ACCOUNT_NOT_FOUND")

	err := account.IdentityError(sentinel, account.MsgSignInFallback)

	assert.True(t, account.IsProviderError(err))
	assert.Equal(t, "ACCOUNT_NOT_FOUND", sentinel.TextCode)

	res := account.Failure[*account.User](err)
	assert.Equal(t, "akun tidak ditemukan", res.Message)
}

func TestResultStatus(t *testing.T) {
	ok := account.Success(3)
	assert.True(t, ok.IsSuccess())
	assert.Equal(t, "success", ok.Status.String())
	_, found := ok.Category()
	assert.False(t, found)

	failed := account.Failure[int](account.ValidationError(account.MsgEmailFormat))
	assert.True(t, failed.IsError())
	assert.Equal(t, account.MsgEmailFormat, failed.Message)
	category, found := failed.Category()
	assert.True(t, found)
	assert.Equal(t, goerrors.CategoryValidation, category)

	plain := account.Failure[int](errors.New("boom"))
	assert.Equal(t, "boom", plain.Message)

	assert.True(t, account.Loading[int]().IsLoading())
}
