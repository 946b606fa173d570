// Package idgen generates the identifiers streamscribe stamps on runs.
//
// A Generator is a plain func so callers and tests can swap the strategy
// without touching the code that consumes IDs.
package idgen

import (
	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
// They sort by creation time, so run IDs order like the runs themselves.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed prepends a fixed prefix to every ID from gen.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// RunPrefix marks collection run IDs.
const RunPrefix = "run_"

// Run generates collection run IDs ("run_<uuidv7>").
var Run Generator = Prefixed(RunPrefix, UUIDv7())
