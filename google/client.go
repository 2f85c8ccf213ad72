package google

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gravitational/trace"
)

const (
	googleHTTPTimeout = 30 * time.Second
	googleMaxConns    = 100
)

func makeClient(baseURL string) *resty.Client {
	return resty.
		NewWithClient(&http.Client{
			Timeout: googleHTTPTimeout,
			Transport: &http.Transport{
				MaxConnsPerHost:     googleMaxConns,
				MaxIdleConnsPerHost: googleMaxConns,
			},
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBaseURL(baseURL)
}

// ExternalError is any non-success response from a Google endpoint. It
// carries the upstream status and body for diagnostics.
type ExternalError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: upstream returned %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsExternalError reports whether err wraps an upstream failure.
func IsExternalError(err error) bool {
	var external *ExternalError
	return errors.As(err, &external)
}

func externalError(op string, resp *resty.Response) error {
	return trace.Wrap(&ExternalError{
		Op:         op,
		StatusCode: resp.StatusCode(),
		Body:       strings.TrimSpace(string(resp.Body())),
	})
}
