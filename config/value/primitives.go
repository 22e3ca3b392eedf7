package value

import (
	"fmt"
	"strconv"
	"strings"
)

// string

type String string

func NewString(p *string, val string) *String {
	*p = val

	return (*String)(p)
}

func (s *String) Set(val string) error {
	*s = String(val)
	return nil
}

func (s *String) String() string {
	return string(*s)
}

func (s *String) Validate() error {
	return nil
}

func (s *String) IsEmpty() bool {
	return len(string(*s)) == 0
}

// array of strings

type StringList struct {
	p         *[]string
	separator string
}

func NewStringList(p *[]string, val []string, separator string) *StringList {
	v := &StringList{
		p:         p,
		separator: separator,
	}

	*p = val

	return v
}

func (s *StringList) Set(val string) error {
	*s.p = split(val, s.separator)

	return nil
}

func (s *StringList) String() string {
	if s.IsEmpty() {
		return "(empty)"
	}

	return strings.Join(*s.p, s.separator)
}

func (s *StringList) Validate() error {
	return nil
}

func (s *StringList) IsEmpty() bool {
	return len(*s.p) == 0
}

// one of a list of strings

type Enum struct {
	p       *string
	allowed []string
}

func NewEnum(p *string, val string, allowed []string) *Enum {
	v := &Enum{
		p:       p,
		allowed: allowed,
	}

	*p = val

	return v
}

func (e *Enum) Set(val string) error {
	val = strings.ToLower(strings.TrimSpace(val))

	for _, a := range e.allowed {
		if a == val {
			*e.p = val
			return nil
		}
	}

	return fmt.Errorf("%q is not one of %s", val, strings.Join(e.allowed, ", "))
}

func (e *Enum) String() string {
	return *e.p
}

func (e *Enum) Validate() error {
	for _, a := range e.allowed {
		if a == *e.p {
			return nil
		}
	}

	return fmt.Errorf("%q is not one of %s", *e.p, strings.Join(e.allowed, ", "))
}

func (e *Enum) IsEmpty() bool {
	return len(*e.p) == 0
}

// boolean

type Bool bool

func NewBool(p *bool, val bool) *Bool {
	*p = val

	return (*Bool)(p)
}

func (b *Bool) Set(val string) error {
	v, err := strconv.ParseBool(val)
	if err != nil {
		return err
	}
	*b = Bool(v)
	return nil
}

func (b *Bool) String() string {
	return strconv.FormatBool(bool(*b))
}

func (b *Bool) Validate() error {
	return nil
}

func (b *Bool) IsEmpty() bool {
	return !bool(*b)
}

// int64

type Int64 int64

func NewInt64(p *int64, val int64) *Int64 {
	*p = val

	return (*Int64)(p)
}

func (u *Int64) Set(val string) error {
	v, err := strconv.ParseInt(val, 0, 64)
	if err != nil {
		return err
	}
	*u = Int64(v)
	return nil
}

func (u *Int64) String() string {
	return strconv.FormatInt(int64(*u), 10)
}

func (u *Int64) Validate() error {
	return nil
}

func (u *Int64) IsEmpty() bool {
	return int64(*u) == 0
}

// int within [min, max]

type IntRange struct {
	p   *int
	min int
	max int
}

func NewIntRange(p *int, val, min, max int) *IntRange {
	v := &IntRange{
		p:   p,
		min: min,
		max: max,
	}

	*p = val

	return v
}

func (i *IntRange) Set(val string) error {
	v, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return err
	}
	*i.p = v
	return nil
}

func (i *IntRange) String() string {
	return strconv.Itoa(*i.p)
}

func (i *IntRange) Validate() error {
	if *i.p < i.min || *i.p > i.max {
		return fmt.Errorf("%d is not in the range of [%d, %d]", *i.p, i.min, i.max)
	}

	return nil
}

func (i *IntRange) IsEmpty() bool {
	return *i.p == 0
}

func split(val, separator string) []string {
	list := []string{}

	for _, elm := range strings.Split(val, separator) {
		elm = strings.TrimSpace(elm)
		if len(elm) != 0 {
			list = append(list, elm)
		}
	}

	return list
}
