// Package middleware stores the global middleware stages and the global
// error handler.
//
// Stages handle cross-cutting concerns such as CORS, JSON body parsing,
// cookie parsing, security headers, input sanitization, request ids,
// request logging, tracing and panic recovery.
package middleware
