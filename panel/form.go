package panel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quickshop/bothub/console"
	"github.com/quickshop/bothub/settings"

	"github.com/go-playground/validator/v10"
)

// ValidationError lists the problems per field key.
type ValidationError struct {
	Panel  string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	problems := make([]string, 0, len(keys))
	for _, k := range keys {
		problems = append(problems, k+": "+e.Fields[k])
	}

	return fmt.Sprintf("invalid values for %s: %s", e.Panel, strings.Join(problems, ", "))
}

// Form reads and writes the values of panel fields.
type Form struct {
	store    settings.Store
	console  Reporter
	validate *validator.Validate
}

func NewForm(store settings.Store, console Reporter) *Form {
	return &Form{
		store:    store,
		console:  console,
		validate: validator.New(),
	}
}

// Values returns the persisted values of all fields in def. Fields without a
// persisted value get their default.
func (f *Form) Values(def Definition) (map[string]string, error) {
	values := make(map[string]string, len(def.Fields))

	for _, field := range def.Fields {
		value, ok, err := f.store.Get(field.StorageKey())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", field.Key, err)
		}

		if !ok {
			value = field.Default
		}

		values[field.Key] = value
	}

	return values, nil
}

// Save validates and persists values. Fields missing in values keep their
// current value. Nothing is persisted if any value is invalid or values
// contains an unknown key.
func (f *Form) Save(def Definition, values map[string]string) error {
	current, err := f.Values(def)
	if err != nil {
		return err
	}

	verr := &ValidationError{
		Panel:  def.ID.String(),
		Fields: map[string]string{},
	}

	for key := range values {
		if _, ok := def.Field(key); !ok {
			verr.Fields[key] = "unknown field"
		}
	}

	data := make(map[string]string, len(def.Fields))

	for _, field := range def.Fields {
		value, ok := values[field.Key]
		if !ok {
			value = current[field.Key]
		}

		value = strings.TrimSpace(value)

		if len(field.Validate) != 0 {
			if err := f.validate.Var(value, field.Validate); err != nil {
				verr.Fields[field.Key] = describe(err)
				continue
			}
		}

		data[field.StorageKey()] = value
	}

	if len(verr.Fields) != 0 {
		return verr
	}

	if err := f.store.SetMany(data); err != nil {
		return fmt.Errorf("saving %s: %w", def.ID, err)
	}

	f.console.Append(def.Title+" variables saved", console.SeveritySuccess)

	return nil
}

func describe(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err.Error()
	}

	fe := errs[0]

	switch fe.Tag() {
	case "required":
		return "is required"
	case "url", "http_url":
		return "must be a URL"
	case "alphanum":
		return "must only contain letters and digits"
	}

	if len(fe.Param()) != 0 {
		return fmt.Sprintf("failed on %s=%s", fe.Tag(), fe.Param())
	}

	return "failed on " + fe.Tag()
}
