package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/maps-gateway/internal/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate - валидация структуры; ошибки полей попадают в details конверта
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ErrInvalidRequest
	}

	fields := make([]map[string]interface{}, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, map[string]interface{}{
			"field":   fe.Field(),
			"rule":    fe.Tag(),
			"value":   fe.Value(),
			"message": fe.Error(),
		})
	}

	return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
		"errors": fields,
	})
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}
