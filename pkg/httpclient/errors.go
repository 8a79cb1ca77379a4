package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/Piyushkr001/revix/pkg/errors"
)

// upstreamError matches the common {"error": {"code", "message"}} and
// {"errors": [{"message"}]} body shapes.
type upstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ParseResponseError consumes and closes a non-2xx response body and maps
// the status to an application error. upstream names the remote service.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", upstream, resp.StatusCode, err)
	}

	msg := string(body)
	var parsed upstreamError
	if json.Unmarshal(body, &parsed) == nil {
		switch {
		case parsed.Error != nil && parsed.Error.Message != "":
			msg = parsed.Error.Message
		case len(parsed.Errors) > 0 && parsed.Errors[0].Message != "":
			msg = parsed.Errors[0].Message
		}
	}
	qualified := fmt.Sprintf("%s: %s", upstream, msg)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(upstream+" resource", msg)
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return apperrors.Unauthorized(qualified)
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.RateLimited(qualified)
	case resp.StatusCode >= http.StatusInternalServerError:
		return apperrors.Unavailable(qualified, nil)
	default:
		return fmt.Errorf("%s returned status %d: %s", upstream, resp.StatusCode, msg)
	}
}
