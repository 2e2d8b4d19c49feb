package rest

import (
	"errors"
	"fmt"
)

// Payload is a decoded JSON response body.
type Payload = map[string]any

// UnknownNamespaceError is returned when the queried namespace does
// not exist.
type UnknownNamespaceError struct {
	Namespace string
	URL       string
}

func (e *UnknownNamespaceError) Error() string {
	return fmt.Sprintf("the namespace %q does not exist (%s)", e.Namespace, e.URL)
}

// UnknownCollectionError is returned when the queried collection does
// not exist in its namespace.
type UnknownCollectionError struct {
	Namespace  string
	Collection string
	URL        string
}

func (e *UnknownCollectionError) Error() string {
	return fmt.Sprintf("no collection at %q in namespace %q (%s)",
		e.Collection, e.Namespace, e.URL)
}

// BadRequestSyntaxError is returned when the server rejects the query
// syntax. The URL generator is expected to only emit valid queries,
// so this always indicates a serialiser bug; please report it.
type BadRequestSyntaxError struct {
	URL string
}

func (e *BadRequestSyntaxError) Error() string {
	return fmt.Sprintf("bad request syntax generated (%s)", e.URL)
}

// ServiceUnavailableError is returned when the accessed component of
// the API is temporarily disabled. Commonly occurs with the
// characters_friend and characters_online_status collections.
type ServiceUnavailableError struct {
	URL string
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("this component of the API is currently unavailable, try again later (%s)", e.URL)
}

// InvalidServiceIDError is returned for unknown service IDs. Check
// your spelling or wait for the registration email.
type InvalidServiceIDError struct {
	URL string
}

func (e *InvalidServiceIDError) Error() string {
	return fmt.Sprintf("the service ID specified is unknown (%s)", e.URL)
}

// MissingServiceIDError is returned when the shared default service
// ID exceeds its rate limit.
type MissingServiceIDError struct {
	URL string
}

func (e *MissingServiceIDError) Error() string {
	return fmt.Sprintf("the default service ID is for casual use only; wait 60 seconds or register your own (%s)", e.URL)
}

// InvalidSearchTermError is returned for field names or values the
// collection does not support. Field names the offending query field
// when URL introspection could identify it.
type InvalidSearchTermError struct {
	Namespace  string
	Collection string
	Field      string
	Message    string
	URL        string
}

func (e *InvalidSearchTermError) Error() string {
	field := "field"
	if e.Field != "" {
		field = fmt.Sprintf("field %q", e.Field)
	}
	return fmt.Sprintf("invalid %s for collection %q/%q: %s (%s)",
		field, e.Namespace, e.Collection, e.Message, e.URL)
}

// ServerError is returned for server-side query parsing errors
// without a more specific classification.
type ServerError struct {
	Message string
	URL     string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %s (%s)", e.Message, e.URL)
}

// CensusError is the fallback for new and exciting error codes.
type CensusError struct {
	Code    string
	Message string
	URL     string
}

func (e *CensusError) Error() string {
	return fmt.Sprintf("unknown error code %q: %s (%s)", e.Code, e.Message, e.URL)
}

// PayloadError is returned when an otherwise successful-looking
// payload lacks an expected key. Distinct from the service errors:
// the transport reported no failure, the response shape is just not
// what the query promised.
type PayloadError struct {
	Key     string
	Payload Payload
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("missing key %q in payload", e.Key)
}

// ErrNotFound is returned by ExtractSingle when the server returned
// no matches.
var ErrNotFound = errors.New("the server did not return any matches")

// ResponseError wraps HTTP- and decoding-level failures.
type ResponseError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *ResponseError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *ResponseError) Unwrap() error { return e.Err }

// MaintenanceError is inferred from an API redirect response; the
// endpoint redirects to a status page during maintenance windows.
type MaintenanceError struct {
	URL        string
	StatusCode int
}

func (e *MaintenanceError) Error() string {
	return fmt.Sprintf("API redirection detected (HTTP %d), maintenance inferred (%s)",
		e.StatusCode, e.URL)
}
