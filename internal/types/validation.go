package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FromValidator converts an error returned by validator.Struct into a
// ValidationError holding one FieldError per failed rule.
func FromValidator(err error) *ValidationError {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Errors: []error{err}}
	}

	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldErrorFrom(fe))
	}

	return &ValidationError{Errors: out}
}

func fieldErrorFrom(fe validator.FieldError) *FieldError {
	fieldErr := &FieldError{
		Path:  fieldPath(fe.Namespace()),
		Tag:   fe.Tag(),
		Value: fmt.Sprint(fe.Value()),
	}

	switch fe.Tag() {
	case "required":
		fieldErr.Value = ""
		fieldErr.Message = "is required"
	case "absurl":
		fieldErr.Message = "must be an absolute URL with scheme and host"
	case "placeholder":
		fieldErr.Err = ErrPlaceholder
	case "excludesall":
		fieldErr.Message = fmt.Sprintf("must not contain any of %q", fe.Param())
	default:
		fieldErr.Message = fmt.Sprintf("failed '%s' rule", fe.ActualTag())
	}

	return fieldErr
}

// fieldPath drops the root struct name from a validator namespace,
// "Values.auth.clientId" becomes "auth.clientId".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}

	return ns
}
