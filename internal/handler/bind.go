package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"rbac/internal/model"
	"rbac/internal/security/password"
	"rbac/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	msgInvalidJSON      = "Invalid JSON format. Please check your request body."
	msgValidationFailed = "Validation failed."
	msgInvalidID        = "Invalid ID format."
)

// FieldError is one entry of the data payload of a multi-field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags on gin's validator and makes field errors
// report JSON names. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" {
				name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			}
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return model.IsValidID(fl.Field().String())
		})
		_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return password.IsStrong(fl.Field().String())
		})
	})
}

// bindJSON decodes the body into dst and classifies failures as BadInput.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return bindingError(err)
	}
	return nil
}

// bindOptionalJSON is bindJSON for bodies that may be absent.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		if len(verrs) == 1 {
			return apperr.BadRequest(fieldMessage(verrs[0]))
		}
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
		}
		return apperr.BadRequest(msgValidationFailed).WithData(out)
	}

	// Anything else is a decoding failure: syntax errors, wrong JSON types, an empty body.
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.Newf(apperr.BadInput, "%s has the wrong type.", label(typeErr.Field))
	}
	return apperr.BadRequest(msgInvalidJSON)
}

// fieldPath drops the top-level struct name: "CreateUserRequest.email" becomes "email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

var fieldLabels = map[string]string{
	"firstName":      "First name",
	"lastName":       "Last name",
	"email":          "Email",
	"password":       "Password",
	"role":           "Role ID",
	"roleName":       "Role name",
	"accessModules":  "accessModules",
	"userId":         "User ID",
	"update":         "Update data",
	"updates":        "updates",
	"transferRoleId": "Transfer role",
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

func fieldMessage(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		if fe.Field() == "accessModules" {
			return "accessModules field is required."
		}
		if strings.HasPrefix(fe.Field(), "accessModules[") {
			return "Module name cannot be empty"
		}
		return name + " is required."
	case "min":
		if fe.Field() == "accessModules" {
			return "At least one access module is required."
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s needs at least %s entries.", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long.", name, fe.Param())
	case "email":
		return "Enter a valid email."
	case "strongpassword":
		return password.StrengthMessage
	case "objectid":
		return msgInvalidID
	default:
		return fmt.Sprintf("%s is invalid.", name)
	}
}
