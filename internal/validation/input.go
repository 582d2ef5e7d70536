package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidEmail адрес не похож на email.
var ErrInvalidEmail = errors.New("validation: некорректный email")

var validate = validator.New()

// ValidateEmail проверяет формат email правилом email движка валидации.
func ValidateEmail(email string) error {
	if err := validate.Var(strings.TrimSpace(email), "required,email,max=254"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	return nil
}

// IsBlank сообщает, что строка пуста после обрезки пробелов.
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
