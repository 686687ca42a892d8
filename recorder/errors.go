package recorder

import (
	"errors"
	"net/http"

	"github.com/kvalheim/dvrctl/proxy"
)

// Common errors returned by the recorder client.
var (
	// ErrInvalidConfig indicates invalid client configuration.
	ErrInvalidConfig = errors.New("invalid recorder configuration")
)

// IsNotFound reports whether err is the service answering that the
// requested entry does not exist.
func IsNotFound(err error) bool {
	var statusErr *proxy.HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}
