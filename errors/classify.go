package errors

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// Kind classifies errors returned by the remote agent engine platform so
// callers can react without inspecting HTTP details themselves.
type Kind int

const (
	// KindUnknown covers everything that is not a recognized API error.
	KindUnknown Kind = iota
	// KindNotFound means the referenced engine or session does not exist.
	KindNotFound
	// KindFailedPrecondition means the operation was rejected because the
	// resource still has dependents (e.g. deleting an engine with sessions).
	KindFailedPrecondition
	// KindAPI is any other error reported by the platform itself.
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindFailedPrecondition:
		return "failed precondition"
	case KindAPI:
		return "api error"
	default:
		return "unknown"
	}
}

// KindOf maps an error to its Kind, most specific first. Errors that do not
// unwrap to a *googleapi.Error are KindUnknown.
func KindOf(err error) Kind {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return KindUnknown
	}
	switch {
	case apiErr.Code == http.StatusNotFound:
		return KindNotFound
	case apiErr.Code == http.StatusConflict:
		return KindFailedPrecondition
	case apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Body, "FAILED_PRECONDITION"):
		return KindFailedPrecondition
	default:
		return KindAPI
	}
}

// APIError returns the underlying *googleapi.Error if there is one, so
// callers can surface the status code and message verbatim.
func APIError(err error) (*googleapi.Error, bool) {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
