package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Money struct {
		Cents int64
	}

	// Expense is a confirmed spending record as handed to storage.
	Expense struct {
		ID          int64 // Database ID, zero before first save
		SpentAt     time.Time
		Description string
		Amount      Money
		Category    string
	}

	// Budget is a per-category spending limit for one calendar month.
	Budget struct {
		ID       int64
		Category string
		Year     int
		Month    int // 1-12
		Limit    Money
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidYear      = errors.New("invalid year")
	ErrZeroDate         = errors.New("date cannot be zero")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if e.SpentAt.IsZero() {
		return ErrZeroDate
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	if b.Year < 2000 || b.Year > 9999 {
		return ErrInvalidYear
	}
	return b.Limit.Validate()
}
