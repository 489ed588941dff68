// Package leadcsv parses uploaded lead CSV files and serializes leads
// back out for export.
//
// Imports are header-flexible: columns may be named in snake_case
// ("first_name") or Title Case ("First Name"), and a few historical
// aliases from older exports are recognized ("Job Title" for label,
// "E-mail" for email, "Organization" for company). Exports always use
// the canonical snake_case header so a re-import round-trips.
package leadcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/leadbase/leadbase/internal/models"
)

// ErrNoHeader is returned for an empty file or one missing a header row.
var ErrNoHeader = fmt.Errorf("csv: missing header row")

// exportHeader is the canonical column order for exports.
var exportHeader = []string{
	"first_name", "last_name", "email", "company", "domain",
	"score", "label", "description", "email_status", "unsubscribe_status",
}

// columnAliases maps a normalized header cell to its canonical field.
// Normalization lowercases and collapses spaces, dashes and underscores,
// so "First Name", "first_name" and "first-name" all land on the same key.
var columnAliases = map[string]string{
	"firstname":         "first_name",
	"lastname":          "last_name",
	"email":             "email",
	"emailaddress":      "email",
	"company":           "company",
	"companyname":       "company",
	"organization":      "company",
	"domain":            "domain",
	"website":           "domain",
	"score":             "score",
	"leadscore":         "score",
	"label":             "label",
	"jobtitle":          "label",
	"title":             "label",
	"description":       "description",
	"notes":             "description",
	"emailstatus":       "email_status",
	"unsubscribestatus": "unsubscribe_status",
}

func normalizeHeader(cell string) string {
	cell = strings.ToLower(strings.TrimSpace(cell))
	cell = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(cell)
	return strings.TrimPrefix(cell, "\ufeff")
}

// Read parses CSV data into raw lead records. Unknown columns are
// ignored and missing columns leave the field empty; validation of the
// values themselves happens later in the ingestion pipeline.
func Read(r io.Reader) ([]models.RawLead, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	// column index -> canonical field
	fields := make(map[int]string, len(header))
	for i, cell := range header {
		if canonical, ok := columnAliases[normalizeHeader(cell)]; ok {
			fields[i] = canonical
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("csv: no recognized columns in header %v", header)
	}

	var leads []models.RawLead
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}

		var lead models.RawLead
		for i, value := range record {
			field, ok := fields[i]
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			switch field {
			case "first_name":
				lead.FirstName = value
			case "last_name":
				lead.LastName = value
			case "email":
				lead.Email = value
			case "company":
				lead.Company = value
			case "domain":
				lead.Domain = value
			case "score":
				lead.Score = value
			case "label":
				lead.Label = value
			case "description":
				lead.Description = value
			case "email_status":
				lead.EmailStatus = value
			case "unsubscribe_status":
				lead.UnsubscribeStatus = value
			}
		}
		leads = append(leads, lead)
	}

	return leads, nil
}

// Write serializes leads in the canonical export format.
func Write(w io.Writer, leads []models.Lead) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, l := range leads {
		record := []string{
			l.FirstName, l.LastName, l.Email, l.Company, l.Domain,
			strconv.Itoa(l.Score), l.Label, l.Description,
			l.EmailStatus, l.UnsubscribeStatus,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
