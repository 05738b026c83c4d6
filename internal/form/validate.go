package form

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/keketsolithane/keketso/internal/models"
)

var validate = newValidator()

// mailbox is the address grammar browsers apply to type=email inputs. It
// accepts dotless domains such as a@localhost.
var mailbox = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@" +
	"[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?" +
	"(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	catalogue := map[string]func(string) bool{
		"service":  models.IsService,
		"budget":   models.IsBudget,
		"timeline": models.IsTimeline,
		"mailbox":  mailbox.MatchString,
	}
	for tag, ok := range catalogue {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return ok(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	return v
}

// IncompleteError lists the draft fields that are empty or malformed.
type IncompleteError struct {
	Fields []string
}

func (e *IncompleteError) Error() string {
	return "form incomplete: " + strings.Join(e.Fields, ", ")
}

// check applies the required-field gate to a draft.
func check(draft any) error {
	err := validate.Struct(draft)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	seen := make(map[string]bool, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, name)
	}
	return &IncompleteError{Fields: fields}
}
