package domain

import "errors"

// Kind 错误分类，传输层据此映射 HTTP 状态码
type Kind string

const (
	KindUnauthorized   Kind = "unauthorized"
	KindForbidden      Kind = "forbidden"
	KindInvalidInput   Kind = "invalid_input"
	KindDuplicateEmail Kind = "duplicate_email"
	KindNotFound       Kind = "not_found"
	KindAuthProvider   Kind = "auth_provider_error"
	KindStoreWrite     Kind = "store_write_error"
	KindProfileWrite   Kind = "profile_write_error"
	KindInternal       Kind = "internal"
)

// Error 面向调用方的错误；Msg 原样展示给前端
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf 返回错误链上第一个 *Error 的分类，非 *Error 视为 internal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func IsKind(err error, k Kind) bool { return err != nil && KindOf(err) == k }

const MsgDuplicateEmail = "A user with this email already exists."
