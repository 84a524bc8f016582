package errors

import (
	"context"
	"errors"
)

// ErrorCode is a numeric failure code embedded in web backend responses.
type ErrorCode int

const (
	ErrCodeUsageLimitExceeded ErrorCode = 1037
	ErrCodeModelInconsistent  ErrorCode = 1050
	ErrCodeModelHeaderInvalid ErrorCode = 1052
	ErrCodeIPBlocked          ErrorCode = 1060
)

// HandleErrorCode maps a web backend error code to a typed error.
func HandleErrorCode(code ErrorCode, model string) error {
	switch code {
	case ErrCodeUsageLimitExceeded:
		return NewUsageLimitError(model)
	case ErrCodeModelInconsistent:
		return NewModelError("model is inconsistent with the conversation")
	case ErrCodeModelHeaderInvalid:
		return NewModelError("model " + model + " is not available")
	case ErrCodeIPBlocked:
		return NewBlockedError("IP temporarily blocked")
	default:
		return NewParseError("unknown error code in response", "")
	}
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsConfigError reports whether err is a configuration failure.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsRateLimitError reports whether err is a quota failure.
func IsRateLimitError(err error) bool {
	var ue *UsageLimitError
	if errors.As(err, &ue) {
		return true
	}
	return GetHTTPStatus(err) == 429
}

// IsTimeoutError reports whether err is a timeout, typed or from a context.
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te) || errors.Is(err, context.DeadlineExceeded)
}

// GetHTTPStatus returns the status code of an APIError in err's chain, or 0.
func GetHTTPStatus(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}

// Kind returns a short stable label for err, used as a log field.
func Kind(err error) string {
	var (
		ue *UsageLimitError
		me *ModelError
		be *BlockedError
		ae *APIError
	)
	switch {
	case err == nil:
		return ""
	case IsConfigError(err):
		return "config"
	case IsAuthError(err):
		return "auth"
	case IsTimeoutError(err):
		return "timeout"
	case errors.As(err, &ue):
		return "usage_limit"
	case errors.As(err, &me):
		return "model"
	case errors.As(err, &be):
		return "blocked"
	case errors.Is(err, ErrInvalidResponse):
		return "parse"
	case errors.Is(err, ErrEmptyReply):
		return "empty_reply"
	case IsNetworkError(err):
		return "network"
	case errors.As(err, &ae):
		return "api"
	default:
		return "unknown"
	}
}
