package serializer

import "errors"

// AppError 应用错误，实现了error接口
type AppError struct {
	Code     int
	Msg      string
	RawError error
}

// NewError 返回新的错误对象
func NewError(code int, msg string, err error) AppError {
	return AppError{
		Code:     code,
		Msg:      msg,
		RawError: err,
	}
}

// WithError 将应用error携带标准库中的error
func (err *AppError) WithError(raw error) AppError {
	err.RawError = raw
	return *err
}

// Error 返回业务代码确定的可读错误信息
func (err AppError) Error() string {
	if err.RawError != nil && err.Msg == "" {
		return err.RawError.Error()
	}
	return err.Msg
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (err AppError) Unwrap() error {
	return err.RawError
}

// 三位数错误编码为复用http原本含义
// 五位数错误编码为应用自定义错误
// 四开头的五位数错误编码为客户端错误，五开头的为服务端或远端错误
const (
	// CodeNotFound 资源未找到
	CodeNotFound = 404
	// CodeParamErr 各种奇奇怪怪的参数错误
	CodeParamErr = 40001
	// CodeUploadFailed 上传出错
	CodeUploadFailed = 40002
	// CodeInsecureScheme 非 HTTPS 连接未经确认
	CodeInsecureScheme = 40010
	// CodeSnapshotInvalid 设置快照格式或版本不兼容
	CodeSnapshotInvalid = 40011
	// CodeDownloadFailed 下载出错
	CodeDownloadFailed = 50003
	// CodeIOFailed IO操作失败
	CodeIOFailed = 50004
	// CodeInternalSetting 内部设置参数错误
	CodeInternalSetting = 50005
	// CodeCacheOperation 缓存操作失败
	CodeCacheOperation = 50006
	// CodeNotSet 未定错误，后续尝试从error中获取
	CodeNotSet = -1
)

// ErrorCode returns the AppError code carried anywhere in err's chain, or CodeNotSet.
func ErrorCode(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeNotSet
}
