package value

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/strftime"
)

// Strftime is a strftime pattern, e.g. for the timestamp label of console
// entries. A pattern that results in an empty label is invalid.
type Strftime string

func NewStrftime(p *string, val string) *Strftime {
	*p = val

	return (*Strftime)(p)
}

func (s *Strftime) Set(val string) error {
	*s = Strftime(val)
	return nil
}

func (s *Strftime) String() string {
	return string(*s)
}

func (s *Strftime) Validate() error {
	f, err := strftime.New(string(*s))
	if err != nil {
		return err
	}

	if len(f.FormatString(time.Now())) == 0 {
		return fmt.Errorf("the pattern must not result in an empty string")
	}

	return nil
}

func (s *Strftime) IsEmpty() bool {
	return len(string(*s)) == 0
}
