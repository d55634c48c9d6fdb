package errors

import (
	stdErrors "errors"
)

func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func AsTableError(err error) (*TableError, bool) {
	var te *TableError
	if stdErrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// HasCode reports whether any typed error in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	if ve, ok := AsValidationError(err); ok && ve.Code() == code {
		return true
	}
	if te, ok := AsTableError(err); ok && te.Code() == code {
		return true
	}
	return false
}
