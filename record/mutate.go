/*
mutate.go - Keeper mutation API

PURPOSE:
  The Keeper applies every state change to the wash book. Each mutation
  takes the current Store snapshot plus operation arguments and returns a
  new snapshot with exactly the targeted collection replaced; unaffected
  collections share their backing arrays with the input. The new snapshot
  is persisted through the Adapter before it is returned.

PERSISTENCE CONTRACT:
  Save failures are logged and swallowed: the mutation still returns the
  computed snapshot so the caller's in-memory state advances. Availability
  over durability.

NOT-FOUND SEMANTICS:
  Update and delete with an unknown id are no-ops that return a snapshot
  with identical content. They are not errors.

VALIDATION:
  Add operations reject empty required names, negative prices, non-positive
  expense amounts, and washes whose car does not exist, returning
  *ValidationError with the input snapshot unchanged. Updates trust their
  caller the same way the historical implementation did.
*/
package record

import (
	"context"
	"log"
	"strings"
	"time"
)

// =============================================================================
// KEEPER
// =============================================================================

// Keeper owns the durable slot and applies mutations. It holds no snapshot
// state itself; the caller keeps the current Store and swaps it for each
// returned one.
type Keeper struct {
	adapter Adapter
	opts    MigrateOptions
}

// NewKeeper creates a Keeper with default migration options.
func NewKeeper(adapter Adapter) *Keeper {
	return NewKeeperWithOptions(adapter, DefaultMigrateOptions())
}

// NewKeeperWithOptions creates a Keeper with explicit migration policy.
func NewKeeperWithOptions(adapter Adapter, opts MigrateOptions) *Keeper {
	return &Keeper{adapter: adapter, opts: opts}
}

// =============================================================================
// LOAD / SAVE / RESET
// =============================================================================

// Load reads the durable slot, migrates the document, and returns the
// snapshot. Any read or parse failure falls back to the seeded default
// store; Load never returns a partial structure.
func (k *Keeper) Load(ctx context.Context) Store {
	data, found, err := k.adapter.Read(ctx)
	if err != nil {
		log.Printf("record: load failed, starting from defaults: %v", err)
		return DefaultStore()
	}
	if !found {
		return DefaultStore()
	}
	doc, err := ParseDoc(data)
	if err != nil {
		log.Printf("record: stored document unreadable, starting from defaults: %v", err)
		return DefaultStore()
	}
	s, err := DecodeStore(Migrate(doc, k.opts))
	if err != nil {
		log.Printf("record: stored document undecodable, starting from defaults: %v", err)
		return DefaultStore()
	}
	return s
}

// Save writes the snapshot to the durable slot. On failure it logs and
// returns false; it never panics or raises.
func (k *Keeper) Save(ctx context.Context, s Store) bool {
	data, err := s.MarshalJSON()
	if err != nil {
		log.Printf("record: save failed: %v", err)
		return false
	}
	if err := k.adapter.Write(ctx, data); err != nil {
		log.Printf("record: save failed: %v", err)
		return false
	}
	return true
}

// Reset clears the durable slot and returns a fresh default snapshot.
func (k *Keeper) Reset(ctx context.Context) Store {
	if err := k.adapter.Clear(ctx); err != nil {
		log.Printf("record: reset failed to clear slot: %v", err)
	}
	return DefaultStore()
}

func (k *Keeper) persist(ctx context.Context, s Store) Store {
	k.Save(ctx, s)
	return s
}

// =============================================================================
// CARS
// =============================================================================

// CarPatch holds the car fields to change; nil fields are preserved.
type CarPatch struct {
	Name   *string `json:"name"`
	ImgURL *string `json:"imgUrl"`
}

func (p CarPatch) apply(c Car) Car {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.ImgURL != nil {
		c.ImgURL = *p.ImgURL
	}
	return c
}

// AddCar appends a new car.
func (k *Keeper) AddCar(ctx context.Context, s Store, in CarInput) (Store, error) {
	if strings.TrimSpace(in.Name) == "" {
		return s, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	next := s
	next.Cars = appended(s.Cars, NewCar(in))
	return k.persist(ctx, next), nil
}

// UpdateCar merges patch over the car with the given id.
func (k *Keeper) UpdateCar(ctx context.Context, s Store, id ID, patch CarPatch) Store {
	next := s
	next.Cars = copied(s.Cars)
	for i := range next.Cars {
		if next.Cars[i].ID == id {
			next.Cars[i] = patch.apply(next.Cars[i])
			break
		}
	}
	return k.persist(ctx, next)
}

// DeleteCar removes the car and strips its id from every wash type's
// per-car overrides. Washes referencing the car are left untouched; readers
// resolve them to a placeholder label.
func (k *Keeper) DeleteCar(ctx context.Context, s Store, id ID) Store {
	next := s
	next.Cars = make([]Car, 0, len(s.Cars))
	for _, c := range s.Cars {
		if c.ID != id {
			next.Cars = append(next.Cars, c)
		}
	}
	next.WashTypes = copied(s.WashTypes)
	for i, wt := range next.WashTypes {
		if _, ok := wt.PerCarOverrides[id]; !ok {
			continue
		}
		pruned := make(map[ID]float64, len(wt.PerCarOverrides)-1)
		for carID, price := range wt.PerCarOverrides {
			if carID != id {
				pruned[carID] = price
			}
		}
		next.WashTypes[i].PerCarOverrides = pruned
	}
	return k.persist(ctx, next)
}

// =============================================================================
// WASH TYPES
// =============================================================================

// WashTypePatch holds the wash type fields to change; nil fields are
// preserved. A non-nil PerCarOverrides replaces the override map wholesale.
type WashTypePatch struct {
	Name            *string        `json:"name"`
	DefaultPrice    *float64       `json:"defaultPrice"`
	PerCarOverrides map[ID]float64 `json:"perCarOverrides"`
}

func (p WashTypePatch) apply(wt WashType) WashType {
	if p.Name != nil {
		wt.Name = *p.Name
	}
	if p.DefaultPrice != nil {
		wt.DefaultPrice = *p.DefaultPrice
	}
	if p.PerCarOverrides != nil {
		overrides := make(map[ID]float64, len(p.PerCarOverrides))
		for k, v := range p.PerCarOverrides {
			overrides[k] = v
		}
		wt.PerCarOverrides = overrides
	}
	return wt
}

// AddWashType appends a new wash type.
func (k *Keeper) AddWashType(ctx context.Context, s Store, in WashTypeInput) (Store, error) {
	if strings.TrimSpace(in.Name) == "" {
		return s, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if in.DefaultPrice < 0 {
		return s, &ValidationError{Field: "defaultPrice", Reason: "must not be negative"}
	}
	next := s
	next.WashTypes = appended(s.WashTypes, NewWashType(in))
	return k.persist(ctx, next), nil
}

// UpdateWashType merges patch over the wash type with the given id.
func (k *Keeper) UpdateWashType(ctx context.Context, s Store, id ID, patch WashTypePatch) Store {
	next := s
	next.WashTypes = copied(s.WashTypes)
	for i := range next.WashTypes {
		if next.WashTypes[i].ID == id {
			next.WashTypes[i] = patch.apply(next.WashTypes[i])
			break
		}
	}
	return k.persist(ctx, next)
}

// DeleteWashType removes the wash type. Washes referencing it are left
// untouched.
func (k *Keeper) DeleteWashType(ctx context.Context, s Store, id ID) Store {
	next := s
	next.WashTypes = make([]WashType, 0, len(s.WashTypes))
	for _, wt := range s.WashTypes {
		if wt.ID != id {
			next.WashTypes = append(next.WashTypes, wt)
		}
	}
	return k.persist(ctx, next)
}

// =============================================================================
// COMPANIES
// =============================================================================

// CompanyPatch holds the company fields to change; nil fields are preserved.
type CompanyPatch struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contactPerson"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
}

func (p CompanyPatch) apply(c Company) Company {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.ContactPerson != nil {
		c.ContactPerson = *p.ContactPerson
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	return c
}

// AddCompany appends a new company.
func (k *Keeper) AddCompany(ctx context.Context, s Store, in CompanyInput) (Store, error) {
	if strings.TrimSpace(in.Name) == "" {
		return s, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	next := s
	next.Companies = appended(s.Companies, NewCompany(in))
	return k.persist(ctx, next), nil
}

// UpdateCompany merges patch over the company with the given id.
func (k *Keeper) UpdateCompany(ctx context.Context, s Store, id ID, patch CompanyPatch) Store {
	next := s
	next.Companies = copied(s.Companies)
	for i := range next.Companies {
		if next.Companies[i].ID == id {
			next.Companies[i] = patch.apply(next.Companies[i])
			break
		}
	}
	return k.persist(ctx, next)
}

// DeleteCompany removes the company. Washes billed to it keep their
// companyId as a dangling reference.
func (k *Keeper) DeleteCompany(ctx context.Context, s Store, id ID) Store {
	next := s
	next.Companies = make([]Company, 0, len(s.Companies))
	for _, c := range s.Companies {
		if c.ID != id {
			next.Companies = append(next.Companies, c)
		}
	}
	return k.persist(ctx, next)
}

// =============================================================================
// WASHES
// =============================================================================

// WashPatch holds the wash fields to change; nil fields are preserved.
// ClearCompanyID detaches the wash from its company (a nil CompanyID alone
// means "leave as is").
type WashPatch struct {
	CarID          *ID        `json:"carId"`
	WashTypeID     *ID        `json:"washTypeId"`
	Price          *float64   `json:"price"`
	Date           *time.Time `json:"date"`
	Notes          *string    `json:"notes"`
	CompanyID      *ID        `json:"companyId"`
	ClearCompanyID bool       `json:"clearCompanyId"`
	CarPlate       *string    `json:"carPlate"`
	IsPaid         *bool      `json:"isPaid"`
}

func (p WashPatch) apply(w Wash) Wash {
	if p.CarID != nil {
		w.CarID = *p.CarID
	}
	if p.WashTypeID != nil {
		w.WashTypeID = *p.WashTypeID
	}
	if p.Price != nil {
		w.Price = *p.Price
	}
	if p.Date != nil {
		w.Date = *p.Date
	}
	if p.Notes != nil {
		w.Notes = *p.Notes
	}
	switch {
	case p.ClearCompanyID:
		w.CompanyID = nil
	case p.CompanyID != nil:
		companyID := *p.CompanyID
		w.CompanyID = &companyID
	}
	if p.CarPlate != nil {
		w.CarPlate = *p.CarPlate
	}
	if p.IsPaid != nil {
		w.IsPaid = *p.IsPaid
	}
	return w
}

// AddWash appends a new wash. The car must exist at creation time; the
// price is taken as entered, the configured min/max bounds are advisory.
func (k *Keeper) AddWash(ctx context.Context, s Store, in WashInput) (Store, error) {
	if _, ok := s.FindCar(in.CarID); !ok {
		return s, &ValidationError{Field: "carId", Reason: "unknown car"}
	}
	next := s
	next.Washes = appended(s.Washes, NewWash(in))
	return k.persist(ctx, next), nil
}

// UpdateWash merges patch over the wash with the given id.
func (k *Keeper) UpdateWash(ctx context.Context, s Store, id ID, patch WashPatch) Store {
	next := s
	next.Washes = copied(s.Washes)
	for i := range next.Washes {
		if next.Washes[i].ID == id {
			next.Washes[i] = patch.apply(next.Washes[i])
			break
		}
	}
	return k.persist(ctx, next)
}

// DeleteWash removes the wash.
func (k *Keeper) DeleteWash(ctx context.Context, s Store, id ID) Store {
	next := s
	next.Washes = make([]Wash, 0, len(s.Washes))
	for _, w := range s.Washes {
		if w.ID != id {
			next.Washes = append(next.Washes, w)
		}
	}
	return k.persist(ctx, next)
}

// =============================================================================
// EXPENSES
// =============================================================================

// ExpensePatch holds the expense fields to change; nil fields are preserved.
type ExpensePatch struct {
	Name     *string    `json:"name"`
	Amount   *float64   `json:"amount"`
	Category *string    `json:"category"`
	Date     *time.Time `json:"date"`
	Notes    *string    `json:"notes"`
}

func (p ExpensePatch) apply(e Expense) Expense {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	return e
}

// AddExpense appends a new expense.
func (k *Keeper) AddExpense(ctx context.Context, s Store, in ExpenseInput) (Store, error) {
	if strings.TrimSpace(in.Name) == "" {
		return s, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if in.Amount <= 0 {
		return s, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	next := s
	next.Expenses = appended(s.Expenses, NewExpense(in))
	return k.persist(ctx, next), nil
}

// UpdateExpense merges patch over the expense with the given id.
func (k *Keeper) UpdateExpense(ctx context.Context, s Store, id ID, patch ExpensePatch) Store {
	next := s
	next.Expenses = copied(s.Expenses)
	for i := range next.Expenses {
		if next.Expenses[i].ID == id {
			next.Expenses[i] = patch.apply(next.Expenses[i])
			break
		}
	}
	return k.persist(ctx, next)
}

// DeleteExpense removes the expense.
func (k *Keeper) DeleteExpense(ctx context.Context, s Store, id ID) Store {
	next := s
	next.Expenses = make([]Expense, 0, len(s.Expenses))
	for _, e := range s.Expenses {
		if e.ID != id {
			next.Expenses = append(next.Expenses, e)
		}
	}
	return k.persist(ctx, next)
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsPatch holds the settings fields to change; nil fields are
// preserved. Used both for the pricing-configuration save and for ad hoc
// single-field edits.
type SettingsPatch struct {
	Currency           *string  `json:"currency"`
	WeekMode           *string  `json:"weekMode"`
	TaxRate            *float64 `json:"taxRate"`
	DiscountPercentage *float64 `json:"discountPercentage"`
	MinimumWashPrice   *float64 `json:"minimumWashPrice"`
	MaximumWashPrice   *float64 `json:"maximumWashPrice"`
	BusinessName       *string  `json:"businessName"`
	BusinessAddress    *string  `json:"businessAddress"`
	PhoneNumber        *string  `json:"phoneNumber"`
	Email              *string  `json:"email"`
}

func (p SettingsPatch) apply(st Settings) Settings {
	if p.Currency != nil {
		st.Currency = *p.Currency
	}
	if p.WeekMode != nil {
		st.WeekMode = *p.WeekMode
	}
	if p.TaxRate != nil {
		st.TaxRate = *p.TaxRate
	}
	if p.DiscountPercentage != nil {
		st.DiscountPercentage = *p.DiscountPercentage
	}
	if p.MinimumWashPrice != nil {
		st.MinimumWashPrice = *p.MinimumWashPrice
	}
	if p.MaximumWashPrice != nil {
		st.MaximumWashPrice = *p.MaximumWashPrice
	}
	if p.BusinessName != nil {
		st.BusinessName = *p.BusinessName
	}
	if p.BusinessAddress != nil {
		st.BusinessAddress = *p.BusinessAddress
	}
	if p.PhoneNumber != nil {
		st.PhoneNumber = *p.PhoneNumber
	}
	if p.Email != nil {
		st.Email = *p.Email
	}
	return st
}

// PatchSettings merges patch over the current settings.
func (k *Keeper) PatchSettings(ctx context.Context, s Store, patch SettingsPatch) Store {
	next := s
	next.Settings = patch.apply(s.Settings)
	return k.persist(ctx, next)
}

// =============================================================================
// PRICE RESOLUTION
// =============================================================================

// ResolveDefaultPrice returns the price to pre-fill for a car/wash-type
// pair: the wash type's per-car override when one is set, else its default
// price, else 0 when the wash type is unknown.
//
// An override of exactly 0 is treated as absent. That is the behavior the
// books have always been kept under; use ResolvePriceStrict for a presence
// check.
func ResolveDefaultPrice(s Store, carID, washTypeID ID) float64 {
	wt, ok := s.FindWashType(washTypeID)
	if !ok {
		return 0
	}
	if price := wt.PerCarOverrides[carID]; price != 0 {
		return price
	}
	return wt.DefaultPrice
}

// ResolvePriceStrict is ResolveDefaultPrice with a presence check, so an
// explicit zero override resolves to 0 instead of the default price.
func ResolvePriceStrict(s Store, carID, washTypeID ID) float64 {
	wt, ok := s.FindWashType(washTypeID)
	if !ok {
		return 0
	}
	if price, ok := wt.PerCarOverrides[carID]; ok {
		return price
	}
	return wt.DefaultPrice
}

// =============================================================================
// SLICE HELPERS - copy-on-write building blocks
// =============================================================================

func appended[T any](xs []T, x T) []T {
	out := make([]T, len(xs)+1)
	copy(out, xs)
	out[len(xs)] = x
	return out
}

func copied[T any](xs []T) []T {
	out := make([]T, len(xs))
	copy(out, xs)
	return out
}
