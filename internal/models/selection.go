package models

import "time"

// BookingSelection is a date (and optionally a slot) picked by a visitor.
// It lives until it is submitted, discarded, or the month changes.
type BookingSelection struct {
	Date     time.Time `json:"-"`
	DateKey  string    `json:"date"`
	TimeSlot string    `json:"time_slot,omitempty"`
}

// NewSelection builds a selection for date with an optional slot key.
func NewSelection(date time.Time, slot string) BookingSelection {
	date = DateOnly(date)
	return BookingSelection{Date: date, DateKey: DateKey(date), TimeSlot: slot}
}

// HasSlot reports whether a time slot was chosen.
func (s BookingSelection) HasSlot() bool {
	return s.TimeSlot != ""
}
