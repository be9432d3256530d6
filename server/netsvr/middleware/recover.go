package middleware

import (
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
)

// Recover 沿用 chi 的 Recoverer：panic 轉 500，並印出 stack。
func Recover(next http.Handler) http.Handler {
	return chimid.Recoverer(next)
}
