package utils

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json names so error keys match the request payload
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	// future: time.Time strictly after now
	v.RegisterValidation("future", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && t.After(time.Now())
	})

	// nonzero_coord: latitude/longitude must not be 0
	v.RegisterValidation("nonzero_coord", func(fl validator.FieldLevel) bool {
		return fl.Field().Float() != 0
	})

	// media_ext: file name with an allowed attachment extension
	v.RegisterValidation("media_ext", func(fl validator.FieldLevel) bool {
		ext := strings.ToLower(filepath.Ext(fl.Field().String()))
		for _, allowed := range AllowedAttachmentExtensions {
			if ext == allowed {
				return true
			}
		}
		return false
	})

	return v
}

// AllowedAttachmentExtensions lists the media types a booking may carry.
var AllowedAttachmentExtensions = []string{
	".jpg", ".jpeg", ".png", ".webp",
	".mp4", ".mov", ".mp3", ".wav", ".m4a",
}

func ValidateStruct(data interface{}) map[string]string {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, err := range validationErrors {
			errors[fieldPath(err)] = getErrorMessage(err)
		}
	}

	return errors
}

// fieldPath drops the root struct name from the namespace (Request.items[0].x -> items[0].x)
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return err.Field()
}

// converts validator errors to human-readable messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Minimum is %s", err.Param())
	case "max":
		return fmt.Sprintf("Maximum is %s", err.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", err.Param())
	case "oneof":
		options := strings.ReplaceAll(err.Param(), " ", ", ")
		return fmt.Sprintf("Must be one of: %s", options)
	case "uuid", "uuid4":
		return "Must be a valid UUID"
	case "unique":
		return "Duplicate values are not allowed"
	case "future":
		return "Must be in the future"
	case "nonzero_coord":
		return "Invalid coordinate"
	case "media_ext":
		return "Invalid file type. Allowed: Images, Video, Audio"
	case "gt":
		return fmt.Sprintf("Must be greater than %s", err.Param())
	case "gtfield":
		return fmt.Sprintf("Must be after %s", err.Param())
	default:
		return fmt.Sprintf("Invalid %s field", err.Field())
	}
}

// formats validation errors map into single string
func FormatValidationErrors(errors map[string]string) string {
	var msgs []string
	for field, msg := range errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(msgs, "; ")
}

// ValidationDetails converts the field map to AppError details.
func ValidationDetails(errors map[string]string) map[string]any {
	details := make(map[string]any, len(errors))
	for k, v := range errors {
		details[k] = v
	}
	return details
}
