package llm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMissingAPIKey   = errors.New("llm: api key not configured")
	ErrEmptyCompletion = errors.New("llm: empty completion")
)

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "upstream http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("upstream http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("upstream http error: status=%d body=%s", e.StatusCode, e.Body)
}

// IsAuthError reports whether err is an upstream rejection of the credential.
func IsAuthError(err error) bool {
	var he *HTTPError
	if !errors.As(err, &he) {
		return false
	}
	return he.StatusCode == http.StatusUnauthorized || he.StatusCode == http.StatusForbidden
}
