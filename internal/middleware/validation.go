package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apperrors "surveycli/internal/errors"
	api "surveycli/pkg/contracts/api/v1"
)

// DefaultMaxBodySize caps JSON request bodies
const DefaultMaxBodySize = 1 << 20

// Validator validates request structs and reports fields by their JSON names
type Validator struct {
	validate    *validator.Validate
	maxBodySize int64
}

// NewValidator creates a validator
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v, maxBodySize: DefaultMaxBodySize}
}

// DecodeJSON reads a size-limited JSON body into v and validates it
func (v *Validator) DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return apperrors.ErrValidation("body", "request body is required")
	}
	body := http.MaxBytesReader(w, r.Body, v.maxBodySize)
	if err := render.DecodeJSON(body, dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.NewWithDetails(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
				"Request body exceeds maximum allowed size", map[string]interface{}{"max_size": v.maxBodySize})
		}
		if errors.Is(err, io.EOF) {
			return apperrors.ErrValidation("body", "request body is required")
		}
		return apperrors.InvalidRequestWithError(err)
	}
	return v.ValidateStruct(dst)
}

// ValidateStruct runs the validate tags of s
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.InvalidRequestWithError(err)
	}

	out := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apperrors.ValidationError{
			Field:   fieldPath(fe),
			Message: formatValidationError(fe),
		})
	}
	return apperrors.NewValidationErrors(out)
}

// fieldPath drops the top-level struct name from the namespace:
// "ReportRequest.tables[0].show" becomes "tables[0].show"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatValidationError(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_without":
		return fmt.Sprintf("%s is required when %s is not set", field, strings.ToLower(param))
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with %s", field, strings.ToLower(param))
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, param)
	case "max":
		return fmt.Sprintf("%s must have at most %s entries", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// QueryParamValidator parses table options from query parameters
type QueryParamValidator struct{}

// NewQueryParamValidator creates a query parameter validator
func NewQueryParamValidator() *QueryParamValidator {
	return &QueryParamValidator{}
}

// Enum returns param when it is one of allowed, or def when it is absent
func (v *QueryParamValidator) Enum(r *http.Request, param string, allowed []string, def string) (string, error) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return def, nil
	}
	for _, a := range allowed {
		if value == a {
			return value, nil
		}
	}
	return "", apperrors.ErrValidation(param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", ")))
}

// Bool parses an optional boolean parameter
func (v *QueryParamValidator) Bool(r *http.Request, param string) (*bool, error) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, apperrors.ErrValidation(param, fmt.Sprintf("%s must be true or false", param))
	}
	return &b, nil
}

// Float parses an optional float parameter that must lie strictly between min and max
func (v *QueryParamValidator) Float(r *http.Request, param string, min, max float64) (*float64, error) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= min || f >= max {
		return nil, apperrors.ErrValidation(param, fmt.Sprintf("%s must be a number between %g and %g", param, min, max))
	}
	return &f, nil
}

// TableOptions reads every table option override from the query string
func (v *QueryParamValidator) TableOptions(r *http.Request) (api.TableOptionsRequest, error) {
	q := r.URL.Query()
	opts := api.TableOptionsRequest{
		PercentFormat: q.Get("percent_format"),
		MeanFormat:    q.Get("mean_format"),
		AxisLabel:     q.Get("axis_label"),
	}

	var err error
	if opts.RemoveExclusions, err = v.Bool(r, "remove_exclusions"); err != nil {
		return opts, err
	}
	if opts.ShowTotals, err = v.Bool(r, "show_totals"); err != nil {
		return opts, err
	}
	if opts.ShowMean, err = v.Bool(r, "show_mean"); err != nil {
		return opts, err
	}
	if opts.SignificanceLevel, err = v.Float(r, "significance_level", 0, 1); err != nil {
		return opts, err
	}
	return opts, nil
}
