package middleware

import (
	"fmt"
	"net/http"
	"time"

	"go-notes-api/pkg/apierror"
)

// Timeout bounds handler run time; the request context is cancelled when it
// fires, which also cancels in-flight database calls.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := fmt.Sprintf(`{"success":false,"error":{"code":%q,"message":"request timed out"}}`, apierror.CodeRequestTimeout)

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
