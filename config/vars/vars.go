// Package vars binds config values to names and environment variables and
// collects the messages from merging and validating them.
package vars

import (
	"fmt"
	"os"

	"github.com/quickshop/bothub/config/value"
)

type variable struct {
	value       value.Value // The bound value
	defVal      string      // The default value in string representation
	name        string      // Dotted name, e.g. "log.level"
	envName     string      // The environment variable that overrides the value
	envAltNames []string    // Deprecated environment variable names
	description string
	required    bool // Whether a non-empty value is required
	disguise    bool // Whether the value is replaced by "***" in messages
	merged      bool // Whether the value has been set from the environment
}

// Variable is the public view of a registered value.
type Variable struct {
	Value       string
	Name        string
	EnvName     string
	Description string
	Required    bool
	Merged      bool
}

type message struct {
	message  string
	variable Variable
	level    string // "info", "warn", or "error"
}

type Variables struct {
	vars  []*variable
	index map[string]*variable
	logs  []message
}

func (vs *Variables) Register(val value.Value, name, envName string, envAltNames []string, description string, required, disguise bool) {
	if vs.index == nil {
		vs.index = map[string]*variable{}
	}

	v := &variable{
		value:       val,
		defVal:      val.String(),
		name:        name,
		envName:     envName,
		envAltNames: envAltNames,
		description: description,
		required:    required,
		disguise:    disguise,
	}

	vs.vars = append(vs.vars, v)
	vs.index[name] = v
}

// Transfer copies the merged state of the variables in vss with the same name.
func (vs *Variables) Transfer(vss *Variables) {
	for _, v := range vs.vars {
		if vss.IsMerged(v.name) {
			v.merged = true
		}
	}
}

func (vs *Variables) SetDefault(name string) {
	v := vs.index[name]
	if v == nil {
		return
	}

	v.value.Set(v.defVal)
}

func (vs *Variables) Get(name string) (string, error) {
	v := vs.index[name]
	if v == nil {
		return "", fmt.Errorf("variable %q not found", name)
	}

	return v.value.String(), nil
}

func (vs *Variables) Set(name, val string) error {
	v := vs.index[name]
	if v == nil {
		return fmt.Errorf("variable %q not found", name)
	}

	return v.value.Set(val)
}

// List returns all variables in the order of registration.
func (vs *Variables) List() []Variable {
	list := make([]Variable, 0, len(vs.vars))

	for _, v := range vs.vars {
		list = append(list, v.public())
	}

	return list
}

func (vs *Variables) Log(level, name string, format string, args ...interface{}) {
	v := vs.index[name]
	if v == nil {
		return
	}

	vs.logs = append(vs.logs, message{
		message:  fmt.Sprintf(format, args...),
		variable: v.public(),
		level:    level,
	})
}

// Merge overrides the values with the values of their environment variables,
// if set. Deprecated names are only looked at if the primary one isn't set.
func (vs *Variables) Merge() {
	for _, v := range vs.vars {
		if len(v.envName) == 0 {
			continue
		}

		envval, ok := os.LookupEnv(v.envName)
		if !ok {
			for _, envName := range v.envAltNames {
				envval, ok = os.LookupEnv(envName)
				if ok {
					vs.Log("warn", v.name, "deprecated name %s, please use %s", envName, v.envName)
					break
				}
			}
		}

		if !ok {
			continue
		}

		if err := v.value.Set(envval); err != nil {
			vs.Log("error", v.name, "%s", err.Error())
		}

		v.merged = true
	}
}

func (vs *Variables) IsMerged(name string) bool {
	v := vs.index[name]
	if v == nil {
		return false
	}

	return v.merged
}

// Validate validates every value and logs an "info" message for each and an
// "error" message for each invalid one.
func (vs *Variables) Validate() {
	for _, v := range vs.vars {
		vs.Log("info", v.name, "%s", "")

		if err := v.value.Validate(); err != nil {
			vs.Log("error", v.name, "%s", err.Error())
		}

		if v.required && v.value.IsEmpty() {
			vs.Log("error", v.name, "a value is required")
		}
	}
}

func (vs *Variables) ResetLogs() {
	vs.logs = nil
}

func (vs *Variables) Messages(logger func(level string, v Variable, message string)) {
	for _, l := range vs.logs {
		logger(l.level, l.variable, l.message)
	}
}

func (vs *Variables) HasErrors() bool {
	for _, l := range vs.logs {
		if l.level == "error" {
			return true
		}
	}

	return false
}

// Overrides returns the names of the variables set from the environment.
func (vs *Variables) Overrides() []string {
	overrides := []string{}

	for _, v := range vs.vars {
		if v.merged {
			overrides = append(overrides, v.name)
		}
	}

	return overrides
}

func (v *variable) public() Variable {
	pv := Variable{
		Value:       v.value.String(),
		Name:        v.name,
		EnvName:     v.envName,
		Description: v.description,
		Required:    v.required,
		Merged:      v.merged,
	}

	if v.disguise {
		pv.Value = "***"
	}

	return pv
}
