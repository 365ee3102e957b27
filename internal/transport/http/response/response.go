package response

import (
	"errors"

	"salesdesk/internal/domain"
)

const MsgInternal = "Internal server error"

type Success struct {
	Success bool `json:"success"`
}

type Failure struct {
	Error string `json:"error"`
}

// OK 无数据的成功响应
func OK() Success { return Success{Success: true} }

func Error(msg string) Failure {
	if msg == "" {
		msg = MsgInternal
	}
	return Failure{Error: msg}
}

// Fail 错误 → (状态码, 响应体)；未分类错误不外露细节
func Fail(err error) (int, Failure) {
	var de *domain.Error
	if errors.As(err, &de) {
		return StatusOf(err), Error(de.Error())
	}
	return StatusOf(err), Error(MsgInternal)
}
