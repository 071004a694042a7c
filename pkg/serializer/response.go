package serializer

import (
	"context"
	"errors"

	"github.com/QuickTabNavigator/QuickTabNavigator/pkg/logging"
	"github.com/gofrs/uuid"
)

// Response 基础序列化器
type Response struct {
	Code          int         `json:"code"`
	Data          interface{} `json:"data,omitempty"`
	Msg           string      `json:"msg"`
	Error         string      `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
}

// NewResponse 返回成功的响应
func NewResponse(c context.Context, data interface{}) Response {
	return Response{
		Data:          data,
		CorrelationID: correlationID(c),
	}
}

// Err 通用错误处理. Errors that are not AppError are reported with CodeNotSet.
func Err(c context.Context, err error) Response {
	res := Response{
		Code:          CodeNotSet,
		Msg:           err.Error(),
		CorrelationID: correlationID(c),
	}

	var appErr AppError
	if errors.As(err, &appErr) {
		res.Code = appErr.Code
		res.Msg = appErr.Msg
		if appErr.RawError != nil {
			res.Error = appErr.RawError.Error()
		}
	}

	return res
}

func correlationID(c context.Context) string {
	if id := logging.CorrelationID(c); id != uuid.Nil {
		return id.String()
	}
	return ""
}
