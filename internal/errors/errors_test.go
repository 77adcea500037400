package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"wenv/internal/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "key_not_found",
			code:    errors.ErrKeyNotFound,
			message: "no such variable",
			wantStr: "[KEY_NOT_FOUND] no such variable",
		},
		{
			name:    "unsupported_type",
			code:    errors.ErrUnsupportedValueType,
			message: "value is a number",
			wantStr: "[UNSUPPORTED_VALUE_TYPE] value is a number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrStore, "ignored"))

	base := stderrors.New("disk on fire")
	err := errors.Wrapf(base, errors.ErrPermissionDenied, "cannot write %s", "PATH")
	assert.Equal(t, "[PERMISSION_DENIED] cannot write PATH: disk on fire", err.Error())
	assert.ErrorIs(t, err, base)
}

func TestCodesThroughWrapping(t *testing.T) {
	inner := errors.New(errors.ErrStoreUnavailable, "closed").WithDetail("path", "/tmp/x")
	outer := fmt.Errorf("listing: %w", inner)

	assert.Equal(t, errors.ErrStoreUnavailable, errors.GetCode(outer))
	assert.True(t, errors.IsErrorCode(outer, errors.ErrStoreUnavailable))
	assert.False(t, errors.IsErrorCode(outer, errors.ErrKeyNotFound))
	assert.Equal(t, errors.ErrUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, "/tmp/x", inner.Details["path"])
}
