package utils

import "errors"

// ErrorRecordNotFound hides the ORM's not-found sentinel from callers above
// the models layer.
var ErrorRecordNotFound = errors.New("record not found")
