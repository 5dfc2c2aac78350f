package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/reputation/pkg/errors"
)

const maxBodyBytes = 1 << 20

// DownstreamErrorResponse matches the {"error":{code,message}} envelope
// written by httputil.WriteError.
type DownstreamErrorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes a non-2xx response body and turns
// it into an error. Structured bodies keep their code and message.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", service, resp.StatusCode, err)
	}

	var downstream DownstreamErrorResponse
	if json.Unmarshal(body, &downstream) == nil && downstream.Error != nil {
		return mapDownstreamError(resp.StatusCode, downstream.Error.Code, downstream.Error.Message, service)
	}
	return fmt.Errorf("%s returned status %d: %s", service, resp.StatusCode, body)
}

func mapDownstreamError(status int, code, message, service string) error {
	msg := fmt.Sprintf("%s: %s", service, message)

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(msg)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(msg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case status == http.StatusConflict:
		return apperrors.Conflict(msg)
	case status == http.StatusTooManyRequests:
		return apperrors.RateLimited()
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(service, fmt.Errorf("%s", message))
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", service, status, code, message)
	default:
		return &apperrors.AppError{Code: code, Message: msg, Status: status}
	}
}
