package core

import (
	"errors"
	"time"
)

const (
	CategoryRumah   Category = "rumah"
	CategoryAnak    Category = "anak"
	CategoryHoliday Category = "holiday"
)

type (
	// Category is the savings bucket a transaction belongs to. The statistics
	// view is not a category; it is served by its own endpoint.
	Category string

	Date struct {
		time.Time
	}

	// Transaction is a single signed savings movement. Nominal is in whole
	// rupiah: positive means income, negative means expense, zero is treated
	// as income for display purposes.
	Transaction struct {
		ID       int64
		Category Category
		Nominal  int64
		Note     string
		Date     Date
		Active   bool
	}

	// TransactionUpdate carries the mutable fields of a transaction. Category
	// and active state never change through an update; active only flips to
	// false on soft delete.
	TransactionUpdate struct {
		Nominal *int64
		Note    *string
		Date    *Date
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrMissingNominal  = errors.New("nominal is required")
	ErrMissingDate     = errors.New("date is required")
	ErrInvalidCategory = errors.New("invalid category")
	ErrNotFound        = errors.New("transaction not found")
)

// Categories returns the real storage categories in display order.
func Categories() []Category {
	return []Category{CategoryRumah, CategoryAnak, CategoryHoliday}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryRumah, CategoryAnak, CategoryHoliday:
		return true
	default:
		return false
	}
}

// Label returns the user-facing category name.
func (c Category) Label() string {
	switch c {
	case CategoryRumah:
		return "Rumah"
	case CategoryAnak:
		return "Anak"
	case CategoryHoliday:
		return "Holiday"
	default:
		return string(c)
	}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, ErrMissingDate
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrMissingDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// String returns the ISO wire form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	return t.Date.Validate()
}
