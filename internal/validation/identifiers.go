package validation

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
)

// UUID validates that a string is a canonical UUID. Empty strings are left to Required.
var UUID = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	validation.NewError("validation_uuid", "must be a valid UUID"),
)

// RFC3339 validates that a string is an RFC3339 timestamp. Empty strings are left to Required.
var RFC3339 = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := time.Parse(time.RFC3339, s)
		return err == nil
	},
	validation.NewError("validation_rfc3339", "must be an RFC3339 timestamp"),
)

// ParsedBy validates a string with a domain parser, reporting the parser's message.
// Empty strings are left to Required.
func ParsedBy[T any](parse func(string) (T, error)) validation.Rule {
	return validation.By(func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if _, err := parse(s); err != nil {
			return validation.NewError("validation_parse", err.Error())
		}
		return nil
	})
}
