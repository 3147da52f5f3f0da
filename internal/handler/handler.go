// Package handler is the HTTP layer that sits right after the router.
//
// It hosts the system endpoints and the typed Handle adapters through
// which route logic receives validated input and raises domain errors.
package handler
