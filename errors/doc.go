// Package errors provides the structured application error used across
// restadapter. AppError carries a machine-readable code, a retryable flag and
// the closest HTTP status, and renders as an RFC 7807 style JSON body.
package errors
