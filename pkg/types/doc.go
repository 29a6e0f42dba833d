// Package types defines the Store interface, record and link entities,
// snapshot iterators, configuration, and the standard errors shared by every
// dwitlit backend.
//
// Callers open a Store through pkg/dwitlit, create records, walk them with
// iterators, and close the Store when done. Backends live under internal/
// and must pass the shared conformance suite in internal/storetest.
package types
