package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	cause := stderrors.New("boom")

	tests := []struct {
		name    string
		err     *Error
		wantMsg string
	}{
		{name: "message wins", err: NewError(1, "bad input", cause), wantMsg: "bad input"},
		{name: "falls back to cause", err: NewError(2, "", cause), wantMsg: "boom"},
		{name: "no cause", err: NewError(3, "plain", nil), wantMsg: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.Equal(t, tt.err.Code, tt.err.GetCode())
			assert.Equal(t, tt.err.Cause, tt.err.Unwrap())
		})
	}
}

func TestError_IsAndCodeOf(t *testing.T) {
	cause := stderrors.New("root")
	err := NewError(42, "wrapped", cause).WithDetails(map[string]string{"k": "v"})
	wrapped := fmt.Errorf("outer: %w", err)

	assert.True(t, stderrors.Is(wrapped, NewError(42, "", nil)))
	assert.False(t, stderrors.Is(wrapped, NewError(43, "", nil)))
	assert.True(t, stderrors.Is(wrapped, cause))
	assert.Equal(t, int64(42), CodeOf(wrapped))
	assert.Equal(t, int64(0), CodeOf(cause))
	assert.Equal(t, int64(0), CodeOf(nil))
	assert.Equal(t, map[string]string{"k": "v"}, err.GetDetails())
	assert.Equal(t, "wrapped", err.GetMessage())
}
