package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Leganyst/clinic-booking/internal/scheduling"
)

// поля называются по json-тегам
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validate проверяет форму запроса и отдаёт ошибку валидации ядра.
func (s *CalendarService) validate(req any) error {
	err := s.validator.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return scheduling.Validation(scheduling.FieldError{Field: "request", Message: err.Error()})
	}
	fields := make([]scheduling.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, scheduling.FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return scheduling.Validation(fields...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid UUID"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "timezone":
		return "must be a valid IANA time zone"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	return "is invalid"
}
