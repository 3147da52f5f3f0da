// Package errs defines the domain error returned by stages and routes.
//
// A *HTTPError carries the status code, message and sub-errors that the
// global error handler writes back to the client. Any other error value is
// treated as opaque and answered with a generic 500.
package errs
