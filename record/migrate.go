/*
migrate.go - Versioned migration of persisted snapshots

PURPOSE:
  Upgrades a persisted document of unknown or older shape to the current
  schema, filling missing pieces with defaults and never destroying user
  data. Migration is idempotent: running it twice yields the same result
  as once.

TRUST LEVELS:
  Migration runs on two paths with different trust in the input:
  - Load:   the document is our own previous save. The four entity
            collections (cars, washTypes, washes, expenses) are assumed
            structurally sound and are NOT defaulted here.
  - Import: the document is externally supplied. backup.go validates and
            defaults those collections BEFORE calling Migrate.

RAW DOCUMENTS:
  Migration operates on the raw JSON object rather than the typed Store so
  that it can distinguish "key absent" from "key set to a zero value" and
  so that unrecognized keys pass through untouched.

SEE ALSO:
  - backup.go: Import-path validation and defaulting
  - mutate.go: Keeper.Load applies Migrate to the persisted document
*/
package record

import "encoding/json"

// CurrentVersion is the schema version written by this build.
const CurrentVersion = 1

// RawDoc is a parsed but untyped snapshot document.
type RawDoc map[string]json.RawMessage

// MigrateOptions controls migration policy.
type MigrateOptions struct {
	// SeedDemoData backfills the demo companies when the persisted snapshot
	// predates the companies collection. When false the collection is
	// defaulted to an empty list instead.
	SeedDemoData bool
}

// DefaultMigrateOptions matches the historical behavior: demo companies are
// injected for pre-companies snapshots.
func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{SeedDemoData: true}
}

// ParseDoc parses data into a raw document. It fails only when data is not
// well-formed JSON or not an object at the top level.
func ParseDoc(data []byte) (RawDoc, error) {
	var doc RawDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Migrate upgrades doc to the current schema. It never fails: any value it
// cannot interpret is replaced by the matching default. The input is not
// modified.
//
// Steps, in order:
//  1. version: absent (or unreadable, or zero) becomes 1. An existing
//     positive version is kept, never lowered.
//  2. companies: absent becomes the seed list (or empty, per options).
//  3. settings: defaults are overlaid UNDER the persisted keys. Persisted
//     keys win; missing recognized keys get defaults; unrecognized keys
//     already present are preserved.
func Migrate(doc RawDoc, opts MigrateOptions) RawDoc {
	out := make(RawDoc, len(doc)+2)
	for k, v := range doc {
		out[k] = v
	}

	var version float64
	if raw, ok := out["version"]; !ok || json.Unmarshal(raw, &version) != nil || version == 0 {
		out["version"] = mustMarshal(CurrentVersion)
	}

	if _, ok := out["companies"]; !ok {
		if opts.SeedDemoData {
			out["companies"] = mustMarshal(seedCompanies())
		} else {
			out["companies"] = json.RawMessage("[]")
		}
	}

	merged := make(map[string]json.RawMessage)
	defaults := mustMarshal(DefaultSettings())
	_ = json.Unmarshal(defaults, &merged)
	if raw, ok := out["settings"]; ok {
		var persisted map[string]json.RawMessage
		if err := json.Unmarshal(raw, &persisted); err == nil {
			for k, v := range persisted {
				merged[k] = v
			}
		}
	}
	out["settings"] = mustMarshal(merged)

	return out
}

// DecodeStore converts a (migrated) raw document into a typed Store.
func DecodeStore(doc RawDoc) (Store, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return Store{}, err
	}
	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return Store{}, err
	}
	return s, nil
}

// mustMarshal is for values this package controls; marshaling them cannot
// fail.
func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
