package domain

import "errors"

var (
	// ErrSignatureNotFound: la marca no tiene firma guardada. No se reintenta.
	ErrSignatureNotFound = errors.New("tone signature not found")
	// ErrMalformedOracleResponse: la respuesta del oraculo no cumple el esquema esperado.
	ErrMalformedOracleResponse = errors.New("malformed oracle response")
	ErrOracleTimeout           = errors.New("oracle timeout")
	ErrNotifierUnreachable     = errors.New("notifier unreachable")
	ErrProposalInvalid         = errors.New("correction proposal invalid")
	ErrNoPendingRejection      = errors.New("no pending rejection for reviewer")
	ErrNoBrands                = errors.New("no brands stored")
)
