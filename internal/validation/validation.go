// Package validation binds request payloads and validates them.
//
// It uses the validator library to enforce rules (like required fields or
// email formats) defined in struct tags and turns failures into 400 domain
// errors carrying one errs.FieldError per failing field.
package validation
