/*
backup.go - Export/import transcoder

PURPOSE:
  Export serializes a snapshot plus a descriptive exportInfo block into a
  portable JSON document with a timestamped filename. Import parses and
  validates an externally supplied document, migrates it, persists it, and
  hands the resulting snapshot back.

TRUST:
  Import assumes nothing about its input. The four entity collections must
  be present and must be arrays (distinct FormatError reasons for each
  failure); companies and settings are defaulted when absent. This is
  stricter than Load, which trusts its own previous save.

ATOMICITY:
  Import either returns a fully decoded, migrated, persisted Store or an
  error with nothing written. The caller swaps its live snapshot only on
  success.
*/
package record

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	productSlug = "washbook"
	exportLabel = "Washbook"
)

// ExportInfo is the metadata block appended to exports. It is purely
// descriptive and is discarded on import.
type ExportInfo struct {
	ExportedAt     time.Time `json:"exportedAt"`
	ExportedBy     string    `json:"exportedBy"`
	Version        int       `json:"version"`
	TotalWashes    int       `json:"totalWashes"`
	TotalExpenses  int       `json:"totalExpenses"`
	TotalCars      int       `json:"totalCars"`
	TotalWashTypes int       `json:"totalWashTypes"`
	TotalCompanies int       `json:"totalCompanies"`
}

// Export renders s as a backup document and returns the document bytes
// together with the suggested download filename
// ("washbook-backup-YYYY-MM-DD-HH-MM-SS.json").
func Export(s Store, now time.Time) ([]byte, string, error) {
	data, err := s.MarshalJSON()
	if err != nil {
		return nil, "", err
	}
	doc, err := ParseDoc(data)
	if err != nil {
		return nil, "", err
	}
	doc["exportInfo"] = mustMarshal(ExportInfo{
		ExportedAt:     now,
		ExportedBy:     exportLabel,
		Version:        s.Version,
		TotalWashes:    len(s.Washes),
		TotalExpenses:  len(s.Expenses),
		TotalCars:      len(s.Cars),
		TotalWashTypes: len(s.WashTypes),
		TotalCompanies: len(s.Companies),
	})

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("%s-backup-%s.json", productSlug, now.Format("2006-01-02-15-04-05"))
	return out, filename, nil
}

// requiredSections must be present, as arrays, in every imported document.
// Companies arrived in a later schema and is defaulted instead.
var requiredSections = []string{"cars", "washTypes", "washes", "expenses"}

// Import validates, migrates, and persists an externally supplied document.
// On any *FormatError the durable slot and the caller's live snapshot are
// untouched.
func (k *Keeper) Import(ctx context.Context, data []byte) (Store, error) {
	doc, err := ParseDoc(data)
	if err != nil {
		return Store{}, &FormatError{Err: ErrMalformedDocument}
	}
	delete(doc, "exportInfo")

	for _, section := range requiredSections {
		raw, ok := doc[section]
		if !ok {
			return Store{}, &FormatError{Section: section, Err: ErrMissingSection}
		}
		if !isJSONArray(raw) {
			return Store{}, &FormatError{Section: section, Err: ErrNotSequence}
		}
	}
	if _, ok := doc["companies"]; !ok {
		doc["companies"] = json.RawMessage("[]")
	}
	if _, ok := doc["settings"]; !ok {
		doc["settings"] = mustMarshal(DefaultSettings())
	}

	s, err := DecodeStore(Migrate(doc, k.opts))
	if err != nil {
		return Store{}, &FormatError{Err: ErrMalformedDocument}
	}

	k.Save(ctx, s)
	return s, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
