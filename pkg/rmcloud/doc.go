// Package rmcloud is a client for the reMarkable cloud document-storage
// service.
//
// A typical session threads credentials through explicitly:
//
//	cred, err := rmcloud.AuthenticateDevice(ctx, code) // once, interactive
//	token, err := rmcloud.AuthenticateUser(ctx, cred.Token)
//	host, err := rmcloud.GetStorageHost(ctx)
//	docs, err := rmcloud.Docs(ctx, host, token, nil)
//
// Every call issues exactly one request and keeps nothing between calls.
// User tokens are short-lived; callers decide when to fetch a new one. There
// is no retry: failures are returned to the caller.
//
// Errors reported by the service are *Error values and can be matched with
// errors.Is against ErrInvalidOneTimeCode, ErrUnknownDeviceType,
// ErrWrongAPIVersion, ErrUserAuthFailure, ErrUnexpectedStorageStatus,
// ErrUploadRequestFailed, ErrUnexpectedUploadURLCount and friends. Transport
// and decoding failures are wrapped and returned unchanged.
//
// Use NewClient with options to point at other endpoints, throttle requests
// or record Prometheus metrics.
package rmcloud
