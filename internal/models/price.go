package models

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// PriceBar is one daily OHLCV observation for an instrument.
type PriceBar struct {
	Date          time.Time `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	Volume        float64   `json:"volume"`
	AdjustedClose float64   `json:"adjusted_close"`
}

// Validate checks that every price field is finite and non-negative.
func (b PriceBar) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"open", b.Open},
		{"high", b.High},
		{"low", b.Low},
		{"close", b.Close},
		{"volume", b.Volume},
		{"adjusted_close", b.AdjustedClose},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s is not finite", f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%s is negative: %v", f.name, f.value)
		}
	}
	return nil
}

// PriceSeries is an immutable, date-ascending run of bars for one instrument.
// Views produced by View share the backing array; no method mutates it.
type PriceSeries struct {
	instrument string
	bars       []PriceBar
}

// NewPriceSeries copies, sorts and validates bars. Duplicate dates are rejected.
func NewPriceSeries(instrument string, bars []PriceBar) (PriceSeries, error) {
	if len(bars) == 0 {
		return PriceSeries{}, &DataFormatError{Source: instrument, Reason: "series is empty"}
	}

	owned := make([]PriceBar, len(bars))
	copy(owned, bars)
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].Date.Before(owned[j].Date)
	})

	for i, bar := range owned {
		if err := bar.Validate(); err != nil {
			return PriceSeries{}, &DataFormatError{
				Source: instrument,
				Row:    i + 1,
				Reason: err.Error(),
			}
		}
		if i > 0 && !owned[i-1].Date.Before(bar.Date) {
			return PriceSeries{}, &DataFormatError{
				Source: instrument,
				Row:    i + 1,
				Column: "date",
				Reason: fmt.Sprintf("duplicate date %s", bar.Date.Format(DateLayout)),
			}
		}
	}

	return PriceSeries{instrument: instrument, bars: owned}, nil
}

// Instrument returns the ticker the series belongs to.
func (s PriceSeries) Instrument() string {
	return s.instrument
}

// Len returns the number of bars.
func (s PriceSeries) Len() int {
	return len(s.bars)
}

// IsEmpty reports whether the series holds no bars.
func (s PriceSeries) IsEmpty() bool {
	return len(s.bars) == 0
}

// At returns a copy of the i-th bar.
func (s PriceSeries) At(i int) PriceBar {
	return s.bars[i]
}

// First returns the earliest bar.
func (s PriceSeries) First() PriceBar {
	return s.bars[0]
}

// Last returns the latest bar.
func (s PriceSeries) Last() PriceBar {
	return s.bars[len(s.bars)-1]
}

// Bars returns a copy of the underlying bars.
func (s PriceSeries) Bars() []PriceBar {
	out := make([]PriceBar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Closes returns the closing prices in date order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.bars))
	for i, bar := range s.bars {
		closes[i] = bar.Close
	}
	return closes
}

// View returns the bars in [from, to) as a series sharing storage with s.
func (s PriceSeries) View(from, to int) PriceSeries {
	if from < 0 {
		from = 0
	}
	if to > len(s.bars) {
		to = len(s.bars)
	}
	if from > to {
		from = to
	}
	// Capacity is capped so an append on the view can never write into s.
	return PriceSeries{instrument: s.instrument, bars: s.bars[from:to:to]}
}

// IndexBefore returns the number of bars dated strictly before t.
func (s PriceSeries) IndexBefore(t time.Time) int {
	return sort.Search(len(s.bars), func(i int) bool {
		return !s.bars[i].Date.Before(t)
	})
}

// IndexAtOrBefore returns the index of the latest bar dated on or before t,
// or -1 when every bar is later than t.
func (s PriceSeries) IndexAtOrBefore(t time.Time) int {
	n := sort.Search(len(s.bars), func(i int) bool {
		return s.bars[i].Date.After(t)
	})
	return n - 1
}

// Between returns the bars dated within [start, end], inclusive.
func (s PriceSeries) Between(start, end time.Time) PriceSeries {
	return s.View(s.IndexBefore(start), s.IndexAtOrBefore(end)+1)
}
