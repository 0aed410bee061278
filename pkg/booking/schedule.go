// Package booking holds the appointment scheduling rules for purchased service sessions.
package booking

import (
	"errors"
	"strings"
	"time"
)

type AppointmentStatus string

const (
	StatusNone                AppointmentStatus = "none"
	StatusPending             AppointmentStatus = "pending"
	StatusAlternativeProposed AppointmentStatus = "alternative_proposed"
	StatusConfirmed           AppointmentStatus = "confirmed"
	StatusConfirmedByCustomer AppointmentStatus = "confirmed_by_customer"
)

type AppointmentMode string

const (
	ModeNone          AppointmentMode = "none"
	ModeRequestedSlot AppointmentMode = "requested_slot"
	ModeContactLater  AppointmentMode = "contact_later"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentPaid       PaymentStatus = "paid"
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentProcessing PaymentStatus = "processing"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrLocked        = errors.New("the salon has already acted on this booking")
	ErrInvalidDate   = errors.New("requested date must be formatted as YYYY-MM-DD")
	ErrInvalidTime   = errors.New("requested time must be formatted as HH:MM")
	ErrUnknownAction = errors.New("action must be 'set' or 'clear'")
)

// Schedule is the scheduling state of one service session.
type Schedule struct {
	PaymentStatus     PaymentStatus     `json:"paymentStatus"`
	AppointmentMode   AppointmentMode   `json:"appointmentMode"`
	AppointmentStatus AppointmentStatus `json:"appointmentStatus"`
	RequestedDate     *string           `json:"requestedDate"`
	RequestedTime     *string           `json:"requestedTime"`
	ProposedDate      *string           `json:"proposedDate"`
	ProposedTime      *string           `json:"proposedTime"`
}

// CanEdit reports whether the customer may still change the requested slot, i.e. the salon
// has neither confirmed, proposed an alternative, nor set a proposed date.
func CanEdit(s Schedule) bool {
	switch s.AppointmentStatus {
	case StatusConfirmed, StatusConfirmedByCustomer, StatusAlternativeProposed:
		return false
	}
	return isBlank(s.ProposedDate)
}

// SetRequested records a requested slot and resets the salon side of the schedule.
func SetRequested(s Schedule, date, clock string) (Schedule, error) {
	if !CanEdit(s) {
		return s, ErrLocked
	}

	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if _, err := time.Parse(DateLayout, date); err != nil {
		return s, ErrInvalidDate
	}
	if _, err := time.Parse(TimeLayout, clock); err != nil {
		return s, ErrInvalidTime
	}

	next := s
	next.AppointmentMode = ModeRequestedSlot
	next.AppointmentStatus = StatusPending
	next.RequestedDate = &date
	next.RequestedTime = &clock
	next.ProposedDate = nil
	next.ProposedTime = nil
	return next, nil
}

// Clear withdraws the requested slot; the salon will contact the customer instead.
func Clear(s Schedule) (Schedule, error) {
	if !CanEdit(s) {
		return s, ErrLocked
	}

	next := s
	next.AppointmentMode = ModeContactLater
	next.AppointmentStatus = StatusNone
	next.RequestedDate = nil
	next.RequestedTime = nil
	next.ProposedDate = nil
	next.ProposedTime = nil
	return next, nil
}

type ActionKind string

const (
	ActionSet   ActionKind = "set"
	ActionClear ActionKind = "clear"
)

// Action is the body of a request-date change.
type Action struct {
	Action        ActionKind `json:"action"`
	RequestedDate string     `json:"requestedDate,omitempty"`
	RequestedTime string     `json:"requestedTime,omitempty"`
}

func Apply(s Schedule, a Action) (Schedule, error) {
	switch a.Action {
	case ActionSet:
		return SetRequested(s, a.RequestedDate, a.RequestedTime)
	case ActionClear:
		return Clear(s)
	default:
		return s, ErrUnknownAction
	}
}

// ConfirmedAt is the proposed slot, else the requested slot, in loc. An unparseable time
// counts as 00:00; an unparseable or missing date yields false.
func ConfirmedAt(s Schedule, loc *time.Location) (time.Time, bool) {
	date, clock := s.RequestedDate, s.RequestedTime
	if !isBlank(s.ProposedDate) {
		date, clock = s.ProposedDate, s.ProposedTime
	}
	if isBlank(date) {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(*date), loc)
	if err != nil {
		return time.Time{}, false
	}

	if clock != nil {
		if t, err := time.Parse(TimeLayout, strings.TrimSpace(*clock)); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
		}
	}
	return day, true
}

func isPaid(p PaymentStatus) bool {
	return p == PaymentPaid || p == PaymentAuthorized || p == PaymentProcessing
}

func isConfirmed(s AppointmentStatus) bool {
	return s == StatusConfirmed || s == StatusConfirmedByCustomer
}

// IsUsed reports whether a paid, confirmed session's slot is strictly in the past.
func IsUsed(s Schedule, now time.Time, loc *time.Location) bool {
	if !isPaid(s.PaymentStatus) || !isConfirmed(s.AppointmentStatus) {
		return false
	}
	at, ok := ConfirmedAt(s, loc)
	if !ok {
		return false
	}
	return at.Before(now)
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
