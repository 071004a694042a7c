package serializer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	a := assert.New(t)
	err := NewError(400, "Bad Request", errors.New("error"))
	a.Error(err)
	a.EqualValues(400, err.Code)

	err.WithError(errors.New("error2"))
	a.Equal("error2", err.RawError.Error())
	a.Equal("Bad Request", err.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	a := assert.New(t)
	sentinel := errors.New("sentinel")
	err := fmt.Errorf("wrapped: %w", NewError(CodeNotFound, "not found", sentinel))

	a.ErrorIs(err, sentinel)
	a.Equal(CodeNotFound, ErrorCode(err))
	a.Equal(CodeNotSet, ErrorCode(errors.New("plain")))
}

func TestAppError_EmptyMsg(t *testing.T) {
	a := assert.New(t)
	err := NewError(CodeIOFailed, "", errors.New("disk full"))
	a.Equal("disk full", err.Error())
}
