package services

import (
	"fmt"
)

// ValidationError reports a request the service refuses to act on.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return "Bad Request"
	}
	return "Bad Request: " + e.Reason
}

// Message is the text shown to clients; Reason only goes to the logs.
func (e *ValidationError) Message() string { return "Bad Request" }

// ConflictError reports an sku already held by another product.
type ConflictError struct {
	SKU string
}

func (e *ConflictError) Error() string   { return e.Message() }
func (e *ConflictError) Message() string { return fmt.Sprintf("SKU '%s' already exists", e.SKU) }

// NotFoundError reports a missing product. Msg is operation specific.
type NotFoundError struct {
	ID  string
	Msg string
}

func (e *NotFoundError) Error() string   { return e.Msg }
func (e *NotFoundError) Message() string { return e.Msg }

func productNotFound(id string) *NotFoundError {
	return &NotFoundError{ID: id, Msg: fmt.Sprintf("Can't find product (%s)", id)}
}

func productDoesNotExist(id string) *NotFoundError {
	return &NotFoundError{ID: id, Msg: fmt.Sprintf("Product with productId (%s) does not exist", id)}
}

// StoreError wraps a repository failure with the operation it broke.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string   { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error   { return e.Err }
func (e *StoreError) Message() string { return "Internal Server Error" }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
