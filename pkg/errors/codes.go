package errors

type ErrorCode string

const (
	ErrSystemInternal     ErrorCode = "SYSTEM_INTERNAL"
	ErrSystemInvalidInput ErrorCode = "SYSTEM_INVALID_INPUT"

	ErrValidationInvalidData   ErrorCode = "VALIDATION_INVALID_DATA"
	ErrValidationRequiredField ErrorCode = "VALIDATION_REQUIRED_FIELD"
	ErrValidationOutOfRange    ErrorCode = "VALIDATION_OUT_OF_RANGE"

	ErrAddressMalformed ErrorCode = "ADDRESS_MALFORMED"

	ErrConfigRead  ErrorCode = "CONFIG_READ_FAILED"
	ErrConfigParse ErrorCode = "CONFIG_PARSE_FAILED"

	ErrTableClosed        ErrorCode = "TABLE_CLOSED"
	ErrTableFull          ErrorCode = "TABLE_FULL"
	ErrTableSlotRange     ErrorCode = "TABLE_SLOT_OUT_OF_RANGE"
	ErrTableInitFailed    ErrorCode = "TABLE_INIT_FAILED"
	ErrTableContextDone   ErrorCode = "TABLE_CONTEXT_DONE"
	ErrIndexOverflow      ErrorCode = "INDEX_OVERFLOW"
	ErrJournalWriteFailed ErrorCode = "JOURNAL_WRITE_FAILED"
	ErrJournalCorrupt     ErrorCode = "JOURNAL_CORRUPT"
)
