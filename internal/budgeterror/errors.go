// Package budgeterror defines the typed errors surfaced by the engine's
// boundaries: hashing, category matching, note parsing, queries, and storage.
package budgeterror

import (
	"fmt"
	"strings"
)

// IdentityError represents a transaction row that cannot be hashed because a
// required field is missing or malformed. Rows like this should have been
// rejected by the importer.
type IdentityError struct {
	Field  string
	Reason string
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("cannot derive transaction identity: %s %s", e.Field, e.Reason)
}

// PatternError represents an invalid category rule. It names the offending
// category and raw pattern so the user can fix the configuration.
type PatternError struct {
	Category string
	Pattern  string
	Err      error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern for category '%s': '%s': %v", e.Category, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// NoteParseError represents note text that failed a variant sub-grammar.
// Callers degrade it to a plain note; it never propagates out of the store.
type NoteParseError struct {
	TransactionID string
	Text          string
	Err           error
}

func (e *NoteParseError) Error() string {
	return fmt.Sprintf("failed to parse note '%s' on transaction %s: %v", e.Text, e.TransactionID, e.Err)
}

func (e *NoteParseError) Unwrap() error {
	return e.Err
}

// UnknownCategoryError represents a query for a category name that is not in
// the configured tree. It carries the valid names.
type UnknownCategoryError struct {
	Category string
	Valid    []string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("'%s' is not a category, valid categories: %s",
		e.Category, strings.Join(e.Valid, ", "))
}

// StoreError represents a save or load failure on the backing database.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed for '%s': %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
