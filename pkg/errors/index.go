package errors

// IndexError provides specialized error handling for the payload index core.
// It extends the base error system with context about which on-disk index
// file or invariant was involved, following the same embedding pattern as
// StorageError and ValidationError.
type IndexError struct {
	// Embed the base error to inherit all standard error functionality
	// including error chaining, structured details, and error codes.
	*baseError

	// Identifies which file or invariant was involved, e.g. "vocab.dat" or
	// "points_map_ids range".
	field string

	// Describes what operation was being performed when the error occurred
	// (e.g. "Open", "Build", "IndexTokens"). This context helps understand
	// the system state and caller action that led to the error.
	operation string

	// Captures the size the invariant required and the size actually found
	// on disk, for length-mismatch corruption errors.
	expectedSize int
	actualSize   int
}

// NewIndexError creates a new index-specific error with the provided context.
func NewIndexError(err error, code ErrorCode, msg string) *IndexError {
	return &IndexError{baseError: NewBaseError(err, code, msg)}
}

// Override base error methods to return *IndexError instead of *baseError.

// WithMessage updates the error message while maintaining the IndexError type.
func (ie *IndexError) WithMessage(msg string) *IndexError {
	ie.baseError.WithMessage(msg)
	return ie
}

// WithCode sets the error code while preserving the IndexError type.
func (ie *IndexError) WithCode(code ErrorCode) *IndexError {
	ie.baseError.WithCode(code)
	return ie
}

// WithDetail adds contextual information while maintaining the IndexError type.
func (ie *IndexError) WithDetail(key string, value any) *IndexError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// WithField records which file or invariant was involved.
func (ie *IndexError) WithField(field string) *IndexError {
	ie.field = field
	return ie
}

// WithOperation records what operation was being performed.
func (ie *IndexError) WithOperation(operation string) *IndexError {
	ie.operation = operation
	return ie
}

// WithSizes records the expected and actual sizes involved in a
// length-mismatch corruption error.
func (ie *IndexError) WithSizes(expected, actual int) *IndexError {
	ie.expectedSize = expected
	ie.actualSize = actual
	return ie
}

// Field returns the file or invariant name associated with the error.
func (ie *IndexError) Field() string { return ie.field }

// Operation returns the name of the operation that was being performed.
func (ie *IndexError) Operation() string { return ie.operation }

// ExpectedSize returns the size the invariant required.
func (ie *IndexError) ExpectedSize() int { return ie.expectedSize }

// ActualSize returns the size actually observed on disk.
func (ie *IndexError) ActualSize() int { return ie.actualSize }

// NewNotSupportedError builds the error returned by mutation methods on an
// immutable mmap index (IndexTokens, IndexDocument, GetVocabMut, ...).
func NewNotSupportedError(operation string) *IndexError {
	return NewIndexError(nil, ErrorCodeNotSupported, "operation not supported on immutable index").
		WithOperation(operation)
}

// NewIndexCorruptionError builds a corruption error for a failed open-time
// invariant, e.g. a length mismatch between sibling files.
func NewIndexCorruptionError(field string, expected, actual int, cause error) *IndexError {
	return NewIndexError(cause, ErrorCodeIndexCorrupted, "index directory failed an invariant check").
		WithField(field).
		WithSizes(expected, actual).
		WithDetail("recovery_required", true)
}
