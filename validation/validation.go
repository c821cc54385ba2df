package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator"
	"github.com/meghashyamc/migemosearch/db/searchdb"
	"github.com/meghashyamc/migemosearch/logger"
)

var (
	ErrInvalidPath    = errors.New("invalid path")
	ErrInvalidQuery   = errors.New("invalid query")
	ErrInvalidPattern = errors.New("invalid pattern")
)

type Validator struct {
	validator *validator.Validate
	logger    logger.Logger
	tagErrors map[string]error
}

type customTag struct {
	name string
	fn   func(v *Validator, value string) bool
	err  error
}

var customTags = []customTag{
	{name: "valid_path", fn: (*Validator).isValidPath, err: ErrInvalidPath},
	{name: "valid_query", fn: (*Validator).isValidQuery, err: ErrInvalidQuery},
	{name: "valid_pattern", fn: (*Validator).isValidPattern, err: ErrInvalidPattern},
}

func New(logger logger.Logger) (*Validator, error) {
	v := &Validator{
		validator: validator.New(),
		logger:    logger,
		tagErrors: make(map[string]error, len(customTags)),
	}
	v.validator.RegisterTagNameFunc(useJSONFieldNames)

	for _, tag := range customTags {
		fn := tag.fn
		if err := v.validator.RegisterValidation(tag.name, func(fl validator.FieldLevel) bool {
			return fn(v, fl.Field().String())
		}); err != nil {
			logger.Error("failed to register custom validator function", "tag", tag.name, "err", err.Error())
			return nil, err
		}
		v.tagErrors[tag.name] = tag.err
	}

	return v, nil
}

// Validate returns one error describing the first failed field.
func (v *Validator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}
	v.logger.Warn("validation failed", "err", err.Error())

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}
	first := validationErrs[0]

	if tagErr, ok := v.tagErrors[first.Tag()]; ok {
		return tagErr
	}
	switch first.Tag() {
	case "required":
		return fmt.Errorf("missing required field '%s'", first.Field())
	case "min", "max":
		return fmt.Errorf("value or length of field '%s' is not in the expected range", first.Field())
	}
	return err
}

func useJSONFieldNames(fld reflect.StructField) string {
	tag := fld.Tag.Get("json")
	if tag == "" {
		tag = fld.Tag.Get("form")
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

// isValidPath accepts an empty value; anything else must be an existing absolute directory.
func (v *Validator) isValidPath(path string) bool {
	if path == "" {
		return true
	}

	switch {
	case strings.TrimSpace(path) == "":
		v.logger.Warn("path is blank", "path", path)
		return false
	case strings.ContainsRune(path, 0):
		v.logger.Warn("path has null byte", "path", path)
		return false
	case !filepath.IsAbs(path):
		v.logger.Warn("path is not absolute", "path", path)
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		v.logger.Info("path does not exist", "path", path)
		return false
	}
	if !info.IsDir() {
		v.logger.Info("path is not a directory", "path", path)
		return false
	}
	return true
}

func (v *Validator) isValidQuery(query string) bool {
	if strings.TrimSpace(query) == "" {
		v.logger.Warn("query is blank", "query", query)
		return false
	}
	return true
}

// isValidPattern accepts literal queries and "@" queries whose remainder compiles.
func (v *Validator) isValidPattern(query string) bool {
	pattern, ok := strings.CutPrefix(query, searchdb.PatternPrefix)
	if !ok {
		return true
	}
	if _, err := regexp.Compile(pattern); err != nil {
		v.logger.Warn("query pattern does not compile", "query", query, "err", err.Error())
		return false
	}
	return true
}
