package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	// Yen is a whole-yen amount. There is no minor unit.
	Yen int64

	Transaction struct {
		ID       uuid.UUID
		Amount   Yen
		Category Category
		Memo     string
		Date     time.Time
		IsIncome bool
	}
)

const maxMemoLength = 200

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownCategory = errors.New("unknown category")
	ErrMemoTooLong     = errors.New("memo too long (max 200 characters)")
)

// NewTransaction builds a transaction with a fresh ID. A zero date means now.
// The income flag follows the category kind.
func NewTransaction(amount Yen, category Category, memo string, date time.Time) Transaction {
	if date.IsZero() {
		date = time.Now()
	}
	return Transaction{
		ID:       uuid.New(),
		Amount:   amount,
		Category: category,
		Memo:     memo,
		Date:     date,
		IsIncome: category.IsIncome(),
	}
}

func (y Yen) Validate() error {
	if y <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the preconditions the entry form enforces before save.
// The ledger itself never calls it.
func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, string(t.Category))
	}
	if t.IsIncome != t.Category.IsIncome() {
		return fmt.Errorf("%w: %q does not match income flag", ErrUnknownCategory, string(t.Category))
	}
	if len([]rune(strings.TrimSpace(t.Memo))) > maxMemoLength {
		return ErrMemoTooLong
	}
	return nil
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// SameMonth reports whether a and b share calendar year and month in loc.
func SameMonth(a, b time.Time, loc *time.Location) bool {
	ay, am, _ := a.In(loc).Date()
	by, bm, _ := b.In(loc).Date()
	return ay == by && am == bm
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
