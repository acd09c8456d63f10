package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors for the storage layer.
// HTTP handlers should use errors.Is() to map these to appropriate HTTP
// status codes; both indicate infrastructure problems, never caller input.
var (
	// ErrStoreUnavailable indicates the property store could not be
	// reached or the query failed. The resolver does not retry; retry
	// policy belongs to the store client.
	ErrStoreUnavailable = errors.New("property store unavailable")

	// ErrMalformedRow indicates a row could not be mapped to a candidate.
	// This is stage-fatal: it means the schema does not match what the
	// resolver expects, so a partial result would be misleading.
	ErrMalformedRow = errors.New("malformed property row")
)

// WrapUnavailable wraps a database error as ErrStoreUnavailable, keeping the
// driver detail in the chain.
func WrapUnavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// WrapMalformedRow wraps a scan error as ErrMalformedRow.
func WrapMalformedRow(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrMalformedRow, err)
}
