package serializer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
	"github.com/stretchr/testify/assert"
)

func TestNewResponse(t *testing.T) {
	a := assert.New(t)

	res := NewResponse(context.Background(), "data")
	a.Equal(0, res.Code)
	a.Equal("data", res.Data)
	a.Empty(res.CorrelationID)

	ctx := logging.NewContext(context.Background(), logging.NewWriterLogger(logging.LevelDebug, io.Discard))
	res = NewResponse(ctx, nil)
	a.Equal(logging.CorrelationID(ctx).String(), res.CorrelationID)
}

func TestErr(t *testing.T) {
	a := assert.New(t)

	res := Err(context.Background(), fmt.Errorf("outer: %w", NewError(CodeNotFound, "not found", errors.New("raw"))))
	a.Equal(CodeNotFound, res.Code)
	a.Equal("not found", res.Msg)
	a.Equal("raw", res.Error)

	res = Err(context.Background(), errors.New("plain"))
	a.Equal(CodeNotSet, res.Code)
	a.Equal("plain", res.Msg)
	a.Empty(res.Error)
}
