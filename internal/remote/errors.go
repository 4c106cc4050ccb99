package remote

import (
	"errors"
	"fmt"
	"strings"

	"zheliyou/internal/domain"
)

// ServiceError is a domain-level error reported by the backend itself
// (constraint violation, missing row, bad credentials), as opposed to a
// failure to reach it.
type ServiceError struct {
	Status  int    `json:"status,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (e *ServiceError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("(%s) %s", e.Code, e.Message)
}

// Kind tells which branch of the error taxonomy a failure came from.
type Kind string

const (
	KindService    Kind = "service"
	KindTransport  Kind = "transport"
	// KindValidation marks input rejected before any remote call was made.
	KindValidation Kind = "validation"
)

// Classify returns the kind of err and the message a Failure should carry.
func Classify(err error) (Kind, string) {
	var svc *ServiceError
	if errors.As(err, &svc) && svc != nil {
		return KindService, messageOr(svc.Message)
	}
	if domain.IsValidation(err) {
		return KindValidation, messageOr(err.Error())
	}
	if err == nil {
		return KindTransport, FallbackMessage
	}
	return KindTransport, messageOr(err.Error())
}

// IsServiceError reports whether err carries a ServiceError with the given code.
// An empty code matches any ServiceError.
func IsServiceError(err error, code string) bool {
	var svc *ServiceError
	if !errors.As(err, &svc) || svc == nil {
		return false
	}
	return code == "" || svc.Code == code
}

func messageOr(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return FallbackMessage
	}
	return msg
}
