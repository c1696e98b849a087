/*
Package record provides the core data model and mutation engine for the
wash book.

PURPOSE:
  This package contains the Store snapshot (the aggregate of every business
  record plus settings), the factories that create well-formed entities, the
  migration engine that upgrades older persisted snapshots, and the Keeper
  that applies mutations and persists the result.

KEY CONCEPTS IN THIS FILE (types.go):
  - Store: The full snapshot. The unit of persistence and of mutation.
  - Car / WashType / Company / Wash / Expense: Immutable value records.
  - Settings: A single embedded configuration record.
  - ID: Type-safe opaque identifier.

DESIGN PRINCIPLES:
  1. Snapshot semantics: mutations never edit in place. Every operation
     takes a Store and returns a new Store; unaffected collections share
     their backing arrays with the input.
  2. Forward compatibility: unknown top-level keys and unknown settings
     keys survive a load/save or import/export round trip untouched.
  3. Soft references: a Wash may point at a Car, WashType or Company that
     was deleted later. Readers resolve those to placeholder labels rather
     than losing wash history.

SEE ALSO:
  - factory.go: Entity constructors and the seeded default snapshot
  - migrate.go: Raw-document migration
  - mutate.go:  Keeper mutation API
*/
package record

import (
	"encoding/json"
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ID is an opaque unique key. Sortable by creation time, no other meaning.
type ID string

// =============================================================================
// ENTITIES - Immutable value records
// =============================================================================

// Car is a vehicle the business washes regularly.
type Car struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	ImgURL    string    `json:"imgUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// WashType is a named service offering with a default price and optional
// per-car price overrides.
type WashType struct {
	ID           ID      `json:"id"`
	Name         string  `json:"name"`
	DefaultPrice float64 `json:"defaultPrice"`

	// PerCarOverrides maps Car IDs to an override price. Entries are sparse;
	// keys for deleted cars are pruned when that car is deleted, never
	// garbage-collected otherwise.
	PerCarOverrides map[ID]float64 `json:"perCarOverrides"`

	CreatedAt time.Time `json:"createdAt"`
}

// Company is a client business whose washes may be billed collectively.
type Company struct {
	ID            ID        `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contactPerson"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Wash is a single service event.
//
// CarID must reference an existing Car when the wash is created. It is NOT
// re-validated afterwards: deleting a Car leaves its washes in place with a
// dangling reference that readers resolve to a placeholder label.
type Wash struct {
	ID         ID      `json:"id"`
	CarID      ID      `json:"carId"`
	WashTypeID ID      `json:"washTypeId"`
	Price      float64 `json:"price"`

	Date  time.Time `json:"date"`
	Notes string    `json:"notes"`

	// CompanyID is nil for walk-in washes. CarPlate is only meaningful when
	// a company is set.
	CompanyID *ID    `json:"companyId"`
	CarPlate  string `json:"carPlate"`
	IsPaid    bool   `json:"isPaid"`

	CreatedAt time.Time `json:"createdAt"`
}

// Expense is a business cost entry. Category is free text; the distinct
// categories observed across expenses drive filtering, there is no
// Category entity.
type Expense struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// =============================================================================
// SETTINGS - Single embedded configuration record
// =============================================================================

// Settings holds business configuration. The numeric wash-price bounds are
// advisory UI hints, not enforced invariants. After a load or import the
// record always contains every recognized key (defaults backfilled).
type Settings struct {
	Currency           string  `json:"currency"`
	WeekMode           string  `json:"weekMode"`
	TaxRate            float64 `json:"taxRate"`
	DiscountPercentage float64 `json:"discountPercentage"`
	MinimumWashPrice   float64 `json:"minimumWashPrice"`
	MaximumWashPrice   float64 `json:"maximumWashPrice"`
	BusinessName       string  `json:"businessName"`
	BusinessAddress    string  `json:"businessAddress"`
	PhoneNumber        string  `json:"phoneNumber"`
	Email              string  `json:"email"`

	// Extra holds unrecognized settings keys so that data written by a newer
	// build survives a round trip through this one.
	Extra map[string]json.RawMessage `json:"-"`
}

var settingsKeys = []string{
	"currency", "weekMode", "taxRate", "discountPercentage",
	"minimumWashPrice", "maximumWashPrice",
	"businessName", "businessAddress", "phoneNumber", "email",
}

type settingsAlias Settings

func (s *Settings) UnmarshalJSON(data []byte) error {
	var a settingsAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range settingsKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		a.Extra = raw
	}
	*s = Settings(a)
	return nil
}

func (s Settings) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(settingsAlias(s), s.Extra)
}

// =============================================================================
// STORE - The aggregate root snapshot
// =============================================================================

// Store is the full snapshot of the business. Collections keep insertion
// order, which doubles as display order (wash history applies its own
// date-descending sort at read time).
type Store struct {
	Version   int        `json:"version"`
	Cars      []Car      `json:"cars"`
	WashTypes []WashType `json:"washTypes"`
	Companies []Company  `json:"companies"`
	Washes    []Wash     `json:"washes"`
	Expenses  []Expense  `json:"expenses"`
	Settings  Settings   `json:"settings"`

	// Extra holds unrecognized top-level keys, preserved verbatim through
	// save and export. The exportInfo block is the one exception: it is
	// always stripped on import.
	Extra map[string]json.RawMessage `json:"-"`
}

var storeKeys = []string{
	"version", "cars", "washTypes", "companies", "washes", "expenses", "settings",
}

type storeAlias Store

func (s *Store) UnmarshalJSON(data []byte) error {
	var a storeAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range storeKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		a.Extra = raw
	}
	*s = Store(a)
	return nil
}

func (s Store) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(storeAlias(s), s.Extra)
}

// marshalWithExtra merges pass-through keys back into the serialized form.
// Known fields win over a stale extra of the same name.
func marshalWithExtra(known any, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return b, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// =============================================================================
// LOOKUPS - Read-only helpers over a snapshot
// =============================================================================

// FindCar returns the car with the given id, if present.
func (s Store) FindCar(id ID) (Car, bool) {
	for _, c := range s.Cars {
		if c.ID == id {
			return c, true
		}
	}
	return Car{}, false
}

// FindWashType returns the wash type with the given id, if present.
func (s Store) FindWashType(id ID) (WashType, bool) {
	for _, wt := range s.WashTypes {
		if wt.ID == id {
			return wt, true
		}
	}
	return WashType{}, false
}

// FindCompany returns the company with the given id, if present.
func (s Store) FindCompany(id ID) (Company, bool) {
	for _, c := range s.Companies {
		if c.ID == id {
			return c, true
		}
	}
	return Company{}, false
}
