package application

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions. Typed errors below carry detail
// and satisfy errors.Is against these.
var (
	ErrNotFound            = errors.New("not found")
	ErrAmbiguous           = errors.New("ambiguous match")
	ErrVaultNotFound       = errors.New("vault not found")
	ErrVaultNotInitialized = errors.New("vault not initialized")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidID           = errors.New("invalid ID")
)

// TaskNotFoundError indicates no task matched an ID or query.
type TaskNotFoundError struct {
	Query string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("no task found matching: %s", e.Query)
}

func (e *TaskNotFoundError) Is(target error) bool { return target == ErrNotFound }

// AmbiguousMatchError indicates a query matched more than one entity.
type AmbiguousMatchError struct {
	Query   string
	Matches []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("query %q matches multiple tasks: %s", e.Query, strings.Join(e.Matches, ", "))
}

func (e *AmbiguousMatchError) Is(target error) bool { return target == ErrAmbiguous }

// ProjectNotFoundError indicates no project matched, with optional
// did-you-mean suggestions.
type ProjectNotFoundError struct {
	Project     string
	Suggestions []string
}

func (e *ProjectNotFoundError) Error() string {
	msg := "project not found: " + e.Project
	if len(e.Suggestions) > 0 {
		msg += "\n\nDid you mean?\n  - " + strings.Join(e.Suggestions, "\n  - ")
	}
	return msg
}

func (e *ProjectNotFoundError) Is(target error) bool { return target == ErrNotFound }

// PersonNotFoundError indicates no person matched.
type PersonNotFoundError struct {
	Name string
}

func (e *PersonNotFoundError) Error() string {
	return "person not found: " + e.Name
}

func (e *PersonNotFoundError) Is(target error) bool { return target == ErrNotFound }

// ContextPackNotFoundError indicates no context pack matched.
type ContextPackNotFoundError struct {
	Pack string
}

func (e *ContextPackNotFoundError) Error() string {
	return "context pack not found: " + e.Pack
}

func (e *ContextPackNotFoundError) Is(target error) bool { return target == ErrNotFound }

// ContextPackExistsError indicates a create collided with an existing pack.
type ContextPackExistsError struct {
	Pack string
}

func (e *ContextPackExistsError) Error() string {
	return "context pack already exists: " + e.Pack
}

// FileOutsideVaultError indicates a file operation tried to escape the
// vault root.
type FileOutsideVaultError struct {
	Path string
}

func (e *FileOutsideVaultError) Error() string {
	return "path is outside the vault: " + e.Path
}

// InvalidDateError indicates a due-date string could not be parsed.
type InvalidDateError struct {
	Input string
}

func (e *InvalidDateError) Error() string {
	if e.Input == "" {
		return "date string cannot be empty"
	}
	return "could not parse date: " + e.Input
}

func (e *InvalidDateError) Is(target error) bool { return target == ErrInvalidDate }

// VaultNotFoundError indicates no vault could be located.
type VaultNotFoundError struct {
	Hint string
}

func (e *VaultNotFoundError) Error() string {
	msg := "could not find vault"
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

func (e *VaultNotFoundError) Is(target error) bool { return target == ErrVaultNotFound }

// VaultNotInitializedError indicates the vault lacks the AIO structure.
type VaultNotInitializedError struct {
	Path string
}

func (e *VaultNotInitializedError) Error() string {
	return fmt.Sprintf("vault at %s is not initialized; run 'aio init'", e.Path)
}

func (e *VaultNotInitializedError) Is(target error) bool { return target == ErrVaultNotInitialized }
