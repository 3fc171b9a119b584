// Package dcerrors defines the typed error kinds the Directory Agent
// surfaces to callers. Nothing in this package swallows an error; each
// kind below is its own struct type, and StorageError keeps the
// lower-layer failure it wraps reachable through Unwrap.
package dcerrors

import "fmt"

// ObjectNotFoundError is raised when a lookup exhausts without a matching
// live-writable row, or when DN resolution fails.
type ObjectNotFoundError struct {
	Identifier string
}

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("object not found: %s", e.Identifier)
}

// NewObjectNotFound builds an ObjectNotFoundError for the given identifier
// description (a SAM name, SID, DN, GUID, DNT, or a fixed anchor name such
// as "domain").
func NewObjectNotFound(identifier string) error {
	return &ObjectNotFoundError{Identifier: identifier}
}

// ObjectOperationError is raised when a precondition on an object fails:
// not an account, not a security principal, missing userAccountControl.
type ObjectOperationError struct {
	Reason     string
	Identifier string
}

func (e *ObjectOperationError) Error() string {
	return fmt.Sprintf("object operation failed (%s): %s", e.Reason, e.Identifier)
}

// NewObjectOperation builds an ObjectOperationError.
func NewObjectOperation(reason, identifier string) error {
	return &ObjectOperationError{Reason: reason, Identifier: identifier}
}

// InvalidArgumentError is raised on a boot-key length mismatch or a null
// argument where one is required.
type InvalidArgumentError struct {
	Param string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Param)
}

// NewInvalidArgument builds an InvalidArgumentError for the named parameter.
func NewInvalidArgument(param string) error {
	return &InvalidArgumentError{Param: param}
}

// NotImplementedError is raised by surfaces that exist only as a stub, such
// as authoritative restore.
type NotImplementedError struct {
	Op string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("not implemented: %s", e.Op)
}

// NewNotImplemented builds a NotImplementedError for the named operation.
func NewNotImplemented(op string) error {
	return &NotImplementedError{Op: op}
}

// StorageError wraps any failure propagated from the cursor/transaction
// layer. The inner error is preserved for errors.Unwrap/errors.Is/As.
type StorageError struct {
	Inner error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %v", e.Inner)
}

func (e *StorageError) Unwrap() error {
	return e.Inner
}

// WrapStorage wraps a lower-layer error as a StorageError. It returns nil
// if err is nil so call sites can do `return dcerrors.WrapStorage(err)`
// unconditionally.
func WrapStorage(err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Inner: err}
}
