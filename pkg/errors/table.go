package errors

// TableError is raised by table operations that cannot proceed, such as calls on a closed
// table or an index that has run out of room.
type TableError struct {
	*baseError
	operation string
	slot      int
	address   string
}

// NewTableError creates a new table error. The slot defaults to -1 (no slot).
func NewTableError(err error, code ErrorCode, msg string) *TableError {
	return &TableError{baseError: NewBaseError(err, code, msg), slot: -1}
}

// WithMessage updates the error message.
func (te *TableError) WithMessage(msg string) *TableError {
	te.baseError.WithMessage(msg)
	return te
}

// WithCode sets the error code.
func (te *TableError) WithCode(code ErrorCode) *TableError {
	te.baseError.WithCode(code)
	return te
}

// WithDetail adds contextual information.
func (te *TableError) WithDetail(key string, value any) *TableError {
	te.baseError.WithDetail(key, value)
	return te
}

// WithOperation records which table operation failed.
func (te *TableError) WithOperation(operation string) *TableError {
	te.operation = operation
	return te
}

// WithSlot records the slot involved in the failure.
func (te *TableError) WithSlot(slot int) *TableError {
	te.slot = slot
	return te
}

// WithAddress records the address, in text form, involved in the failure.
func (te *TableError) WithAddress(address string) *TableError {
	te.address = address
	return te
}

// Operation returns the name of the operation that was being performed.
func (te *TableError) Operation() string {
	return te.operation
}

// Slot returns the slot involved in the failure, or -1.
func (te *TableError) Slot() int {
	return te.slot
}

// Address returns the address involved in the failure.
func (te *TableError) Address() string {
	return te.address
}
