package datasource

import "errors"

// DataSourceError represents errors from upstream provider operations
type DataSourceError struct {
	Source  string // Provider name
	Code    string // Error code (e.g., "timeout")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's code, so callers can classify
// with errors.Is without reaching into Code.
func (e DataSourceError) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Code == ErrCodeTimeout
	case ErrRateLimitExceeded:
		return e.Code == ErrCodeRateLimitExceeded
	case ErrAuthenticationFailed:
		return e.Code == ErrCodeAuthenticationFail
	}
	return false
}

// Common error codes
const (
	ErrCodeTimeout            = "timeout"
	ErrCodeRateLimitExceeded  = "rate_limit_exceeded"
	ErrCodeAuthenticationFail = "authentication_failed"
	ErrCodeInvalidData        = "invalid_data"
	ErrCodeNetworkError       = "network_error"
	ErrCodeServerError        = "server_error"
)

// Sentinel errors for errors.Is checks
var (
	ErrTimeout              = errors.New("request timed out")
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsTimeout reports whether err is a fetch timeout
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
