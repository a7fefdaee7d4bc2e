package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/geo-routing-microservice/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// В ошибках поля называются так же, как в JSON запроса
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("travel_mode", func(fl validator.FieldLevel) bool {
		return domain.TravelMode(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("entity_type", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case domain.EntityTypeAgent, domain.EntityTypeClient:
			return true
		}
		return false
	})
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}
