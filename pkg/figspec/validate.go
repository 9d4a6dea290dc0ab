package figspec

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/crossplot/pkg/errors"
	"github.com/matzehuels/crossplot/pkg/palette"
	"github.com/matzehuels/crossplot/pkg/render"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("color", validateColor)
}

// validateColor accepts hex colors and the palette's named colors.
func validateColor(fl validator.FieldLevel) bool {
	_, err := palette.Parse(fl.Field().String())
	return err == nil
}

// Validate checks field constraints and the rules that span fields.
func (f *Figure) Validate() error {
	if err := validate.Struct(f); err != nil {
		return specError(err)
	}
	if f.Name != "" {
		if err := errors.ValidateName(f.Name); err != nil {
			return err
		}
	}
	for _, s := range []*Split{f.Rows, f.Cols} {
		if s != nil && s.LabelsFrom != "" && s.Breakpoints != nil {
			return errors.New(errors.ErrCodeInvalidSpec, "labels_from and breakpoints are mutually exclusive")
		}
	}
	for _, format := range f.Output.Formats {
		if err := errors.ValidateFormat(format, render.Formats()); err != nil {
			return err
		}
	}
	seen := make(map[string]bool)
	for i, b := range f.Blocks {
		if b.Name == "" {
			continue
		}
		key := b.Side + "/" + b.Name
		if seen[key] {
			return errors.New(errors.ErrCodeDuplicateName, "blocks[%d]: block %q already exists on %s", i, b.Name, b.Side)
		}
		seen[key] = true
	}
	return nil
}

func specError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(errors.ErrCodeInvalidSpec, err, "validate figure")
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fieldMessage(fe)
	}
	return errors.New(errors.ErrCodeInvalidSpec, "%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Figure.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_without":
		return fmt.Sprintf("%s is required when %s is empty", field, fe.Param())
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, fe.Param())
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "color":
		return fmt.Sprintf("%s: invalid color %v", field, fe.Value())
	default:
		return fmt.Sprintf("%s fails %s=%s", field, fe.Tag(), fe.Param())
	}
}
