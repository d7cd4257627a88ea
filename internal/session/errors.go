package session

import "fmt"

// ErrorKind classifies API failures so the UI can pick the right
// user-visible message. Raw engine or transport errors never surface.
type ErrorKind int

const (
	// KindRequestFailed is the generic bucket for 4xx/5xx responses.
	KindRequestFailed ErrorKind = iota
	// KindServerUnreachable means the request was made and nothing came back.
	KindServerUnreachable
	// KindServerNotRunning means a probe of the bare origin also failed.
	KindServerNotRunning
	// KindEndpointNotFound means the origin answers but the route is missing.
	KindEndpointNotFound
	// KindInvalidCredentials covers rejected login attempts.
	KindInvalidCredentials
	// KindEmailTaken covers duplicate-email registration.
	KindEmailTaken
)

// User-visible messages. Tests pin the duplicate-email one.
const (
	MsgServerNotResponding = "Server is not responding. Please try again later."
	MsgServerNotRunning    = "Cannot reach the server. Is the backend running?"
	MsgEndpointNotFound    = "The server is running but this endpoint is missing. Check the API base URL."
	MsgInvalidCredentials  = "Invalid email or password."
	MsgDuplicateEmail      = "This email is already registered. Try logging in instead."
	MsgRegistrationFailed  = "Registration failed. Please try again."
)

// APIError is the typed error returned by the client.
type APIError struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	apiErr, ok := err.(*APIError)
	return apiErr, ok
}
