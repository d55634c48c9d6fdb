package errors

// baseError carries what every table error shares. ValidationError and TableError embed it
// and add their own context.
type baseError struct {
	cause   error
	message string
	code    ErrorCode
	details map[string]any // Slot numbers, addresses, file paths.
}

// NewBaseError wraps err, which may be nil, under code and msg.
func NewBaseError(err error, code ErrorCode, msg string) *baseError {
	return &baseError{cause: err, code: code, message: msg}
}

func (be *baseError) WithMessage(msg string) *baseError {
	be.message = msg
	return be
}

func (be *baseError) WithCode(code ErrorCode) *baseError {
	be.code = code
	return be
}

// WithDetail records one key/value pair for logs and callers that inspect Details.
func (be *baseError) WithDetail(key string, value any) *baseError {
	if be.details == nil {
		be.details = make(map[string]any)
	}
	be.details[key] = value
	return be
}

// Error renders "message: cause", or just the message when there is no cause.
func (be *baseError) Error() string {
	if be.cause == nil {
		return be.message
	}
	return be.message + ": " + be.cause.Error()
}

func (be *baseError) Unwrap() error {
	return be.cause
}

func (be *baseError) Code() ErrorCode {
	return be.code
}

// Details may be nil.
func (be *baseError) Details() map[string]any {
	return be.details
}
