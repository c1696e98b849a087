/*
factory.go - Entity constructors and the default snapshot

PURPOSE:
  One factory per entity kind. Each takes the caller-supplied fields and
  returns a fully populated record with a fresh ID and creation timestamp.
  Factories apply defaults only; field validation happens in the Keeper
  before a factory is reached.

SEE ALSO:
  - mutate.go:  Keeper operations that call these factories
  - migrate.go: Uses the default settings and seed companies
*/
package record

import "time"

// =============================================================================
// INPUTS - Caller-supplied fields per entity kind
// =============================================================================

// CarInput carries the fields for a new car.
type CarInput struct {
	Name   string `json:"name"`
	ImgURL string `json:"imgUrl"`
}

// WashTypeInput carries the fields for a new wash type.
type WashTypeInput struct {
	Name         string  `json:"name"`
	DefaultPrice float64 `json:"defaultPrice"`
}

// CompanyInput carries the fields for a new company.
type CompanyInput struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

// WashInput carries the fields for a new wash.
type WashInput struct {
	CarID      ID        `json:"carId"`
	WashTypeID ID        `json:"washTypeId"`
	Price      float64   `json:"price"`
	Date       time.Time `json:"date"`
	Notes      string    `json:"notes"`
	CompanyID  *ID       `json:"companyId"`
	CarPlate   string    `json:"carPlate"`
	IsPaid     bool      `json:"isPaid"`
}

// ExpenseInput carries the fields for a new expense.
type ExpenseInput struct {
	Name     string    `json:"name"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
	Notes    string    `json:"notes"`
}

// =============================================================================
// FACTORIES
// =============================================================================

// NewCar constructs a car record.
func NewCar(in CarInput) Car {
	return Car{ID: NewID(), Name: in.Name, ImgURL: in.ImgURL, CreatedAt: now()}
}

// NewWashType constructs a wash type record with an empty override map.
func NewWashType(in WashTypeInput) WashType {
	return WashType{
		ID:              NewID(),
		Name:            in.Name,
		DefaultPrice:    in.DefaultPrice,
		PerCarOverrides: map[ID]float64{},
		CreatedAt:       now(),
	}
}

// NewCompany constructs a company record.
func NewCompany(in CompanyInput) Company {
	return Company{
		ID:            NewID(),
		Name:          in.Name,
		ContactPerson: in.ContactPerson,
		Phone:         in.Phone,
		Email:         in.Email,
		Address:       in.Address,
		CreatedAt:     now(),
	}
}

// NewWash constructs a wash record.
func NewWash(in WashInput) Wash {
	return Wash{
		ID:         NewID(),
		CarID:      in.CarID,
		WashTypeID: in.WashTypeID,
		Price:      in.Price,
		Date:       in.Date,
		Notes:      in.Notes,
		CompanyID:  in.CompanyID,
		CarPlate:   in.CarPlate,
		IsPaid:     in.IsPaid,
		CreatedAt:  now(),
	}
}

// NewExpense constructs an expense record.
func NewExpense(in ExpenseInput) Expense {
	return Expense{
		ID:        NewID(),
		Name:      in.Name,
		Amount:    in.Amount,
		Category:  in.Category,
		Date:      in.Date,
		Notes:     in.Notes,
		CreatedAt: now(),
	}
}

func now() time.Time { return time.Now().UTC() }

// =============================================================================
// DEFAULT SNAPSHOT
// =============================================================================

// DefaultSettings returns the baseline settings record.
func DefaultSettings() Settings {
	return Settings{
		Currency:           "€",
		WeekMode:           "last7days",
		TaxRate:            0,
		DiscountPercentage: 0,
		MinimumWashPrice:   1,
		MaximumWashPrice:   100,
	}
}

// seedCompanies returns the two demo client companies.
func seedCompanies() []Company {
	return []Company{
		NewCompany(CompanyInput{
			Name:          "Kompania ABC",
			ContactPerson: "Genti Hoxha",
			Phone:         "+355 69 123 4567",
			Email:         "genti@abc.al",
			Address:       "Rruga Dëshmorët, Tiranë",
		}),
		NewCompany(CompanyInput{
			Name:          "Biznes XYZ",
			ContactPerson: "Ana Krasniqi",
			Phone:         "+355 69 987 6543",
			Email:         "ana@xyz.al",
			Address:       "Bulevardi Dëshmorët, Prishtinë",
		}),
	}
}

// DefaultStore returns the seeded snapshot used on first run: three demo
// cars, three wash types, the demo companies, and baseline settings.
func DefaultStore() Store {
	return Store{
		Version: CurrentVersion,
		Cars: []Car{
			NewCar(CarInput{Name: "BMW", ImgURL: "https://logos-world.net/wp-content/uploads/2020/04/BMW-Logo.png"}),
			NewCar(CarInput{Name: "Audi", ImgURL: "https://logos-world.net/wp-content/uploads/2020/04/Audi-Logo.png"}),
			NewCar(CarInput{Name: "Mercedes", ImgURL: "https://logos-world.net/wp-content/uploads/2020/04/Mercedes-Benz-Logo.png"}),
		},
		WashTypes: []WashType{
			NewWashType(WashTypeInput{Name: "Brenda", DefaultPrice: 5}),
			NewWashType(WashTypeInput{Name: "Jashtë", DefaultPrice: 7}),
			NewWashType(WashTypeInput{Name: "E Plotë", DefaultPrice: 10}),
		},
		Companies: seedCompanies(),
		Washes:    []Wash{},
		Expenses:  []Expense{},
		Settings:  DefaultSettings(),
	}
}

// EmptyStore returns a snapshot with no records at all, for deployments that
// do not want the demo seed data.
func EmptyStore() Store {
	return Store{
		Version:   CurrentVersion,
		Cars:      []Car{},
		WashTypes: []WashType{},
		Companies: []Company{},
		Washes:    []Wash{},
		Expenses:  []Expense{},
		Settings:  DefaultSettings(),
	}
}
