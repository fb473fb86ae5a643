package oceanstor

import "fmt"

// AuthError reports a failed login: bad credentials, an unreachable host,
// or a session response the client could not use.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return e.Err.Error() }
func (e *AuthError) Unwrap() error { return e.Err }

// FetchError reports a failed category query after a successful login.
type FetchError struct {
	Category string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Category, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// APIError is a non-zero error code returned in a response envelope.
type APIError struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion,omitempty"`
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("array returned error code %d", e.Code)
	}
	return fmt.Sprintf("array returned error code %d: %s", e.Code, e.Description)
}
