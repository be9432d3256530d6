package middleware

import (
	"net/http"
	"strings"

	chimid "github.com/go-chi/chi/v5/middleware"
)

// RequestID 沿用 chi 的實作，往 context 注入 per-request id。
func RequestID(next http.Handler) http.Handler {
	return chimid.RequestID(next)
}

func GetReqId(r *http.Request) string {
	return chimid.GetReqID(r.Context())
}

// GetReqIdNumPart 取 request id 最後一段流水號（chi 格式為 host/prefix-N）。
func GetReqIdNumPart(r *http.Request) string {
	str := chimid.GetReqID(r.Context())
	if str == "" {
		return ""
	}
	if i := strings.LastIndexByte(str, '-'); i >= 0 && i+1 < len(str) {
		return str[i+1:]
	}
	return str
}
