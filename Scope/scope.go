// Package Scope narrows trips, payments, expenses and fuel logs to a date range
// and truck/client/supplier filter before they are aggregated or exported.
package Scope

import (
	"fmt"
	"strings"
	"time"
)

type Range string

const (
	Today   Range = "today"
	Weekly  Range = "weekly"
	Monthly Range = "monthly"
	Yearly  Range = "yearly"
	Custom  Range = "custom"
)

// All is the entity filter value that disables truck/client/supplier matching.
const All = "all"

const dateLayout = "2006-01-02"

// ParseRange returns the named range or fallback when raw is unknown.
func ParseRange(raw string, fallback Range) Range {
	switch r := Range(strings.ToLower(strings.TrimSpace(raw))); r {
	case Today, Weekly, Monthly, Yearly, Custom:
		return r
	}
	return fallback
}

// Params is the raw filter input, usually read from a query string.
type Params struct {
	Truck     string
	Client    string
	Supplier  string
	Range     string
	StartDate string
	EndDate   string
}

// Record is what the filter needs to know about one row.
// Calendar is true when Date comes from a DATE column: its year, month and day
// are the record's day whatever zone the driver attached. Otherwise Date is
// an instant and its day depends on the scope's location.
// HasParties is false for rows that carry no client or supplier, which then
// pass the client and supplier filters untouched.
type Record struct {
	Date       time.Time
	Calendar   bool
	TruckID    string
	Client     string
	Supplier   string
	HasParties bool
}

// Day returns the record's calendar day as midnight in loc, or the zero time
// when the record has no date.
func (r Record) Day(loc *time.Location) time.Time {
	if r.Date.IsZero() {
		return time.Time{}
	}
	t := r.Date
	if !r.Calendar {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

type Scoped interface {
	ScopeRecord() Record
}

// Scope is a filter value. It has no setters; build a new one to change it.
type Scope struct {
	truckID   string
	client    string
	supplier  string
	dateRange Range
	start     time.Time
	end       time.Time
	now       time.Time
}

// New builds a Scope evaluated against now. Malformed dates are dropped,
// which turns an incomplete custom range into no date filter at all.
func New(p Params, now time.Time, fallback Range) Scope {
	return Scope{
		truckID:   entity(p.Truck),
		client:    entity(p.Client),
		supplier:  entity(p.Supplier),
		dateRange: ParseRange(p.Range, fallback),
		start:     parseDay(p.StartDate, now.Location()),
		end:       parseDay(p.EndDate, now.Location()),
		now:       now,
	}
}

func entity(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, All) {
		return ""
	}
	return v
}

func parseDay(v string, loc *time.Location) time.Time {
	v = strings.TrimSpace(v)
	if len(v) > len(dateLayout) {
		v = v[:len(dateLayout)]
	}
	t, err := time.ParseInLocation(dateLayout, v, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// TruckID is the filtered truck, or "" for all trucks.
func (s Scope) TruckID() string { return s.truckID }

func (s Scope) Client() string { return s.client }

func (s Scope) Supplier() string { return s.supplier }

func (s Scope) Range() Range { return s.dateRange }

func (s Scope) Now() time.Time { return s.now }

// Bounds returns the custom range when both ends are set.
func (s Scope) Bounds() (start, end time.Time, ok bool) {
	if s.dateRange != Custom || s.start.IsZero() || s.end.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	return s.start, s.end, true
}

// Label is the human readable range, e.g. "WEEKLY" or "2024-01-01 TO 2024-01-31".
func (s Scope) Label() string {
	if start, end, ok := s.Bounds(); ok {
		return fmt.Sprintf("%s TO %s", start.Format(dateLayout), end.Format(dateLayout))
	}
	return strings.ToUpper(string(s.dateRange))
}

// Slug is the range as used in file names.
func (s Scope) Slug() string {
	if start, end, ok := s.Bounds(); ok {
		return fmt.Sprintf("custom_%s_%s", start.Format(dateLayout), end.Format(dateLayout))
	}
	return string(s.dateRange)
}

// Match reports whether r passes every filter in s.
func (s Scope) Match(r Record) bool {
	if s.truckID != "" && r.TruckID != s.truckID {
		return false
	}
	if r.HasParties {
		if s.client != "" && !sameName(r.Client, s.client) {
			return false
		}
		if s.supplier != "" && !sameName(r.Supplier, s.supplier) {
			return false
		}
	}
	return s.matchDate(r.Day(s.now.Location()))
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func (s Scope) matchDate(day time.Time) bool {
	today := startOfDay(s.now)
	switch s.dateRange {
	case Today:
		return !day.IsZero() && !day.Before(today)
	case Weekly:
		return !day.IsZero() && !day.Before(today.AddDate(0, 0, -7))
	case Monthly:
		return !day.IsZero() && !day.Before(today.AddDate(0, -1, 0))
	case Custom:
		start, end, ok := s.Bounds()
		if !ok {
			return true
		}
		if day.IsZero() {
			return false
		}
		return !day.Before(start) && !day.After(end)
	default:
		return true
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Apply returns the records that match s, in their original order.
func Apply[T Scoped](records []T, s Scope) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if s.Match(r.ScopeRecord()) {
			out = append(out, r)
		}
	}
	return out
}
