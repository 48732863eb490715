package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrMissingFields indicates a required member is absent or null (400)
	ErrMissingFields = errors.New("required fields are missing")

	// ErrNoFields indicates a partial update that changes nothing (400)
	ErrNoFields = errors.New("at least one field must be given")

	// ErrInvalidFields indicates well-typed values that break a rule (422)
	ErrInvalidFields = errors.New("invalid field values")

	// ErrNotInteger indicates a JSON value that is not an integer literal (400)
	ErrNotInteger = errors.New("value is not an integer")
)

var validate = validator.New()

func validateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+":"+fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidFields, strings.Join(fields, ","))
		}
		return fmt.Errorf("%w: %v", ErrInvalidFields, err)
	}
	return nil
}

// Integer is a JSON number written without fraction or exponent.
// Strings, booleans and 30.0 are rejected.
type Integer int

func (i *Integer) UnmarshalJSON(b []byte) error {
	s := string(b)
	if strings.ContainsAny(s, ".eE\"") || s == "true" || s == "false" {
		return fmt.Errorf("%w: %s", ErrNotInteger, s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotInteger, s)
	}
	*i = Integer(n)
	return nil
}
