package models

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar date format used across inputs and reports.
const DateLayout = "2006-01-02"

// Sentinel errors
var (
	ErrDataFormat              = errors.New("malformed price data")
	ErrInsufficientHistory     = errors.New("insufficient history")
	ErrInsufficientData        = errors.New("insufficient data")
	ErrUnknownInstrument       = errors.New("unknown instrument")
	ErrMalformedRecommendation = errors.New("malformed recommendation")
	ErrNoPriceData             = errors.New("no price data in simulated window")
)

// DataFormatError describes a row or column that could not be loaded.
type DataFormatError struct {
	Source string
	Row    int
	Column string
	Reason string
}

func (e *DataFormatError) Error() string {
	msg := "data format error"
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Row > 0 {
		msg += fmt.Sprintf(" at row %d", e.Row)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" (column %q)", e.Column)
	}
	return msg + ": " + e.Reason
}

func (e *DataFormatError) Unwrap() error {
	return ErrDataFormat
}

// InsufficientHistoryError is returned when fewer bars precede a date than required.
type InsufficientHistoryError struct {
	Instrument string
	AsOf       time.Time
	Available  int
	Required   int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history for %s as of %s: %d bars available, %d required",
		e.Instrument, e.AsOf.Format(DateLayout), e.Available, e.Required)
}

func (e *InsufficientHistoryError) Unwrap() error {
	return ErrInsufficientHistory
}

// InsufficientDataError is returned by a computation given too few observations.
type InsufficientDataError struct {
	Computation string
	Available   int
	Required    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: %d available, %d required",
		e.Computation, e.Available, e.Required)
}

func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}

// UnknownInstrumentError is returned on a lookup for an instrument that was never cached.
type UnknownInstrumentError struct {
	Instrument string
}

func (e *UnknownInstrumentError) Error() string {
	return fmt.Sprintf("unknown instrument %q", e.Instrument)
}

func (e *UnknownInstrumentError) Unwrap() error {
	return ErrUnknownInstrument
}
