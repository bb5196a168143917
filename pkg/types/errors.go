package types

import "fmt"

// FetchError is a network or provider failure. The cycle continues with partial data.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError is a malformed response or document. Only that source's contribution is dropped.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StorageError means a snapshot could not be persisted or read.
// It is fatal for the persistence step of a cycle.
type StorageError struct {
	Op   string // save, list, cleanup
	Path string // file path, directory or table
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// InputError is a record missing required fields or carrying an invalid value.
// The offending record is skipped, never the whole batch.
type InputError struct {
	Record string // game id, book key or outcome name
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("invalid %s in %s: %s", e.Field, e.Record, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
