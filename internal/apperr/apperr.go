// Package apperr defines the closed set of failure kinds the service can
// report and their mapping to HTTP status codes.  Repositories and handlers
// raise these instead of ad-hoc error values so the boundary layer can
// translate every failure uniformly.  Anything that is not an *Error maps
// to 500 with a generic message.
package apperr

import (
	"errors"
	"net/http"
)

// Kind enumerates every failure category the service distinguishes.
type Kind int

const (
	KindUnexpected        Kind = iota // unanticipated failure, internal detail withheld
	KindAlreadyRegistered             // uniqueness violation on create/edit
	KindNotFound                      // referenced entity does not exist
	KindForbidden                     // authenticated but not permitted
	KindNotSignedIn                   // missing or invalid access credential
	KindWrongPassword                 // credential mismatch on login
	KindBookNotAvailable              // no copies left to borrow
	KindOverdueBooks                  // member blocked by overdue loans
	KindBookExists                    // duplicate title+author in the catalog
	KindInvalidToken                  // refresh token absent from the registry
	KindTokenVerification             // verification token invalid or expired
)

// statusByKind is the single source of truth for the HTTP mapping.
var statusByKind = map[Kind]int{
	KindUnexpected:        http.StatusInternalServerError,
	KindAlreadyRegistered: http.StatusConflict,
	KindNotFound:          http.StatusNotFound,
	KindForbidden:         http.StatusForbidden,
	KindNotSignedIn:       http.StatusUnauthorized,
	KindWrongPassword:     http.StatusForbidden,
	KindBookNotAvailable:  http.StatusConflict,
	KindOverdueBooks:      http.StatusConflict,
	KindBookExists:        http.StatusConflict,
	KindInvalidToken:      http.StatusUnauthorized,
	KindTokenVerification: http.StatusUnauthorized,
}

// Error carries a failure kind together with a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Convenience constructors for the kinds that always use the same wording.

func AlreadyRegistered(message string) *Error { return New(KindAlreadyRegistered, message) }
func NotFound(message string) *Error          { return New(KindNotFound, message) }
func Forbidden(message string) *Error         { return New(KindForbidden, message) }
func NotSignedIn() *Error                     { return New(KindNotSignedIn, "you are not signed in") }
func WrongPassword() *Error                   { return New(KindWrongPassword, "wrong password") }
func BookNotAvailable() *Error                { return New(KindBookNotAvailable, "book is not available") }
func OverdueBooks() *Error                    { return New(KindOverdueBooks, "user has overdue books") }
func BookExists() *Error                      { return New(KindBookExists, "book already exists") }
func InvalidToken() *Error                    { return New(KindInvalidToken, "invalid token") }
func TokenVerification() *Error               { return New(KindTokenVerification, "token verification failed") }
func Unexpected(message string) *Error        { return New(KindUnexpected, message) }

// KindOf extracts the failure kind from err.  Errors that are not *Error
// (driver errors, context deadlines, and so on) report KindUnexpected.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	if s, ok := statusByKind[KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }

// PublicMessage returns the message safe to show the caller.  Unexpected
// errors are replaced with a generic message so internals never leak.
func PublicMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindUnexpected {
		return ae.Message
	}
	return "internal server error"
}
