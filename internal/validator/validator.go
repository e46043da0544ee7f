package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/tutor-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps a go-playground validator with the tutor custom tags registered.
type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{structValidator: structValidator}
}

// Validate checks struct tags and returns ValidationErrors on failure.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Var validates a single value against a tag string.
func (v *Validator) Var(field interface{}, tag string) error {
	return v.structValidator.Var(field, tag)
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("difficulty", oneOf(
		models.DifficultyBeginner,
		models.DifficultyIntermediate,
		models.DifficultyAdvanced,
	))
	validate.RegisterValidation("risk_level", oneOf(
		models.RiskLow,
		models.RiskMedium,
		models.RiskHigh,
	))
	validate.RegisterValidation("module_type", oneOf(
		models.ModuleVideo,
		models.ModuleQuiz,
		models.ModuleExercise,
	))

	// JSON names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// oneOf builds a validation func accepting exactly the given string values.
// Pointer fields are dereferenced by the validator before the call.
func oneOf[T ~string](valid ...T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, v := range valid {
			if string(v) == value {
				return true
			}
		}
		return false
	}
}
