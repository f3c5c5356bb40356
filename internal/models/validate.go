package models

import (
	"fmt"

	"github.com/go-playground/validator"
)

var validate = validator.New()

// Validate checks the struct tags of a record. The returned error names the
// first failing fields.
func Validate(record interface{}) error {
	return describe(record, validate.Struct(record))
}

// ValidateFields checks only the named fields of a record. Nested fields are
// addressed as "Metrics.FuelLevel".
func ValidateFields(record interface{}, fields ...string) error {
	return describe(record, validate.StructPartial(record, fields...))
}

func describe(record interface{}, err error) error {
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid %T: %v", record, fields)
	}
	return err
}
