package lnurl

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLnURL is returned when a string is not a valid bech32
	// LNURL or any other supported LNURL input form.
	ErrInvalidLnURL = errors.New("invalid lnurl")

	// ErrInvalidLightningAddress is returned when a lightning address is
	// not of the form <user>@<domain>.
	ErrInvalidLightningAddress = errors.New("invalid lightning address")

	// ErrInvalidResponse is returned when a service response is not a
	// JSON object, lacks its tag or does not match its schema.
	ErrInvalidResponse = errors.New("invalid lnurl response")

	// ErrUnknownTag is returned when a response carries a tag that this
	// package does not know how to decode.
	ErrUnknownTag = errors.New("unknown lnurl tag")

	// ErrInvalidAmount is returned when a requested amount lies outside
	// the bounds advertised by the service.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidComment is returned when a comment is too long, or when a
	// comment and a zap request are supplied together.
	ErrInvalidComment = errors.New("invalid comment")

	// ErrDecryptFailed is returned for every success action decryption
	// failure. Callers can not tell a bad IV, bad padding or a non UTF-8
	// plaintext apart.
	ErrDecryptFailed = errors.New("unable to decrypt success action")

	// ErrNoHost is returned when an auth URL has no host to derive a
	// linking key for.
	ErrNoHost = errors.New("url has no host")

	// ErrZapsUnsupported is returned when a zap request is built for a
	// service that does not advertise nostr support.
	ErrZapsUnsupported = errors.New("service does not support zaps")
)

// ServiceError is an application level error reported by an LNURL service
// through a {"status":"ERROR","reason":...} response.
type ServiceError struct {
	Reason string
}

// Error returns the reason given by the service.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("lnurl service error: %s", e.Reason)
}

// HTTPError is returned by the Client when a service answers with a non
// success HTTP status.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected http status: %d", e.StatusCode)
}
