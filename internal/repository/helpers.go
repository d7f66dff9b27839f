package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/importer"
	"github.com/alexanderramin/phaseline/internal/ledger"
)

// encodeProject renders the stored document. The importer's JSON shape is
// the storage format, so exported files and stored rows are interchangeable.
func encodeProject(p *domain.Project) (string, error) {
	data, err := importer.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeProject parses and re-validates a stored document. Stored resources
// always carry explicit rates, so no rate table is needed.
func decodeProject(doc string) (*domain.Project, error) {
	p, errs := importer.Import([]byte(doc), ledger.RateTable{})
	if len(errs) > 0 {
		return nil, fmt.Errorf("decoding project document: %w", errors.Join(errs...))
	}
	return p, nil
}

// parseTime parses an RFC3339 column, returning the zero time for bad
// values.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
