package api

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ApiError is the body of every error response.
type ApiError struct {
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ApiError{Message: message})
}

func abortWithDetails(c *gin.Context, details []domain.FieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ApiError{Message: "Validation failed", Details: details})
}

// abortWithBindingError reports a request that could not be decoded or failed its binding tags.
func abortWithBindingError(c *gin.Context, err error) {
	abortWithDetails(c, bindingDetails(err))
}

// abortWithServiceError maps service and domain errors to HTTP responses.
// Anything unrecognised is logged and reported as a 500.
func abortWithServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		abortWithDetails(c, vErr.Details)
	case errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, service.ErrNoPendingGeneration):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrProfileExists),
		errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrNoExercises):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPlanLimitReached):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrExportUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

var registerValidatorsOnce sync.Once

// registerValidators teaches gin's validator the json field names and the tempo tag.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("tempo", func(fl validator.FieldLevel) bool {
			return domain.Tempo(fl.Field().String()).Valid()
		})
	})
}

// fieldName reports a struct field by its json name, falling back to its form name.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// bindPartialJSON binds a body of Optional fields. Errors returned by a field's own
// UnmarshalJSON may reach us without a field name, so the body is re-checked per field.
func bindPartialJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindBodyWith(obj, binding.JSON)
	if err == nil {
		return true
	}

	details := bindingDetails(err)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "" {
		if body, ok := c.Get(gin.BodyBytesKey); ok {
			if raw, ok := body.([]byte); ok {
				if name := mistypedField(raw, obj); name != "" {
					details = []domain.FieldError{{Field: name, Message: "must be of type " + typeErr.Type.String()}}
				}
			}
		}
	}
	abortWithDetails(c, details)
	return false
}

// mistypedField names the first top-level member of body that does not decode
// into the matching field of obj.
func mistypedField(body []byte, obj any) string {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil {
		return ""
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return ""
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := fieldName(f)
		raw, ok := members[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, reflect.New(f.Type).Interface()); err != nil {
			return name
		}
	}
	return ""
}

func bindingDetails(err error) []domain.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]domain.FieldError, len(verrs))
		for i, fe := range verrs {
			details[i] = domain.FieldError{Field: fieldPath(fe.Namespace()), Message: describe(fe)}
		}
		return details
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "request"
		}
		return []domain.FieldError{{Field: field, Message: "must be of type " + typeErr.Type.String()}}
	}
	if errors.Is(err, io.EOF) {
		return []domain.FieldError{{Field: "body", Message: "is required"}}
	}
	return []domain.FieldError{{Field: "request", Message: err.Error()}}
}

// fieldPath drops the leading struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	unit := ""
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Map, reflect.Array:
		unit = " items"
	}

	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s%s", fe.Param(), unit)
	case "max":
		return fmt.Sprintf("must be at most %s%s", fe.Param(), unit)
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email address"
	case "tempo":
		return "must be 4 characters, each 1-9 or X"
	case "uuid":
		return "must be a valid UUID"
	}
	return "failed on the " + fe.Tag() + " rule"
}
