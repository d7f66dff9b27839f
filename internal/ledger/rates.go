package ledger

import (
	"sort"
	"strings"

	"github.com/alexanderramin/phaseline/internal/domain"
)

// RateTable derives hourly rates from designations: rate = Base * ratio.
type RateTable struct {
	Base   float64
	Ratios map[string]float64
}

// DefaultRateTable is the consulting ladder used when no configuration
// overrides it.
func DefaultRateTable() RateTable {
	return RateTable{
		Base: 50,
		Ratios: map[string]float64{
			"Junior Consultant": 0.6,
			"Consultant":        1.0,
			"Senior Consultant": 1.4,
			"Manager":           1.8,
			"Senior Manager":    2.2,
			"Director":          2.8,
			"Partner":           3.5,
		},
	}
}

// RateFor returns the hourly rate of a designation. Lookup ignores case.
func (rt RateTable) RateFor(designation string) (float64, bool) {
	if ratio, ok := rt.Ratios[designation]; ok {
		return rt.Base * ratio, true
	}
	for name, ratio := range rt.Ratios {
		if strings.EqualFold(name, designation) {
			return rt.Base * ratio, true
		}
	}
	return 0, false
}

// Designations lists the known designations, cheapest first.
func (rt RateTable) Designations() []string {
	names := make([]string, 0, len(rt.Ratios))
	for name := range rt.Ratios {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := rt.Ratios[names[i]], rt.Ratios[names[j]]
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
	return names
}

// ApplyDesignation returns r with its designation changed. The rate is
// recomputed from the table only for billable resources; a non-billable
// resource keeps whatever rate was last set.
func (rt RateTable) ApplyDesignation(r domain.Resource, designation string) (domain.Resource, error) {
	rate, ok := rt.RateFor(designation)
	if !ok {
		return r, domain.Invalid("designation", domain.RuleUnknownRef, "unknown designation %q", designation)
	}
	r.Designation = designation
	if r.Billable {
		r.HourlyRate = rate
	}
	return r, nil
}
