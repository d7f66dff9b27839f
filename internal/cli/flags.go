package cli

import (
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/spf13/pflag"
)

// dateValue is a YYYY-MM-DD flag. The zero value means "not given".
type dateValue struct {
	t time.Time
}

var _ pflag.Value = (*dateValue)(nil)

func (d *dateValue) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(domain.DateLayout)
}

func (d *dateValue) Set(s string) error {
	t, err := domain.ParseDate(s)
	if err != nil {
		return err
	}
	d.t = t
	return nil
}

func (d *dateValue) Type() string { return "date" }

func (d *dateValue) IsSet() bool { return !d.t.IsZero() }

func dateFlag(fs *pflag.FlagSet, p *dateValue, name, usage string) {
	fs.Var(p, name, usage)
}
