//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets.
type Test mg.Namespace

// All runs every test in the module.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Unit runs all tests with cgo disabled. The sqlite3 driver tests skip.
func (Test) Unit() error {
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "0"}, binGo, "test", "./...")
}

// Cgo runs the storage tests with cgo enabled so both SQLite drivers run
// the conformance suite.
func (Test) Cgo() error {
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"}, binGo, "test",
		"./internal/sqldb/...", "./internal/sqlite/...")
}

// Golden rewrites the JSONL golden files from the current export format.
func (Test) Golden() error {
	return sh.RunV(binGo, "test", "./internal/jsonl/...", "-update")
}
