package response

import (
	"net/http"

	"salesdesk/internal/domain"
)

// kindStatus 错误分类 → HTTP 状态码。身份服务拒绝（弱密码等）按 400 返回。
var kindStatus = map[domain.Kind]int{
	domain.KindUnauthorized:   http.StatusUnauthorized,
	domain.KindForbidden:      http.StatusForbidden,
	domain.KindInvalidInput:   http.StatusBadRequest,
	domain.KindDuplicateEmail: http.StatusBadRequest,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindAuthProvider:   http.StatusBadRequest,
	domain.KindStoreWrite:     http.StatusInternalServerError,
	domain.KindProfileWrite:   http.StatusInternalServerError,
	domain.KindInternal:       http.StatusInternalServerError,
}

func StatusOf(err error) int {
	if s, ok := kindStatus[domain.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
