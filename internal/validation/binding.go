package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ignatzorin/rewards-admin/internal/models"
)

// RegisterGinValidators регистрирует правила консоли в движке валидации gin.
func RegisterGinValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("validation: движок gin не является validator.Validate")
	}
	return Register(v)
}

// Register добавляет имена полей из json тегов и правило withdrawal_target.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v.RegisterValidation("withdrawal_target", func(fl validator.FieldLevel) bool {
		_, ok := models.WithdrawalTargetStatuses[fl.Field().String()]
		return ok
	})
}

// FieldErrors превращает ошибку валидации в карту поле → сообщение.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = "This field is required"
		case "withdrawal_target":
			out[fe.Field()] = "Status must be completed or canceled"
		default:
			out[fe.Field()] = "Invalid value"
		}
	}
	return out
}
