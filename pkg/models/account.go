package models

import (
	"time"

	"github.com/Ramsey-B/peony/pkg/booking"
	"github.com/Ramsey-B/peony/pkg/database"
	"github.com/Ramsey-B/peony/pkg/relation"
)

type User struct {
	ID             string    `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	FirstName      *string   `db:"first_name" json:"firstName,omitempty"`
	LastName       *string   `db:"last_name" json:"lastName,omitempty"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	Locale         *string   `db:"locale" json:"locale,omitempty"`
	MarketingOptIn bool      `db:"marketing_opt_in" json:"marketingOptIn"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`

	Addresses []Address `db:"-" json:"addresses"`
}

func (User) TableName() string {
	return "users"
}

// ProfilePatch is the body of a profile update. Nil fields are left unchanged; a non-nil
// Addresses replaces the whole address book.
type ProfilePatch struct {
	FirstName      *string    `json:"firstName,omitempty"`
	LastName       *string    `json:"lastName,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	Locale         *string    `json:"locale,omitempty" validate:"omitempty,oneof=it en"`
	MarketingOptIn *bool      `json:"marketingOptIn,omitempty"`
	Addresses      *[]Address `json:"addresses,omitempty" validate:"omitempty,dive"`
}

// ApplyTo returns u with the patch applied.
func (p ProfilePatch) ApplyTo(u User) User {
	if p.FirstName != nil {
		u.FirstName = p.FirstName
	}
	if p.LastName != nil {
		u.LastName = p.LastName
	}
	if p.Phone != nil {
		u.Phone = p.Phone
	}
	if p.Locale != nil {
		u.Locale = p.Locale
	}
	if p.MarketingOptIn != nil {
		u.MarketingOptIn = *p.MarketingOptIn
	}
	if p.Addresses != nil {
		u.Addresses = append([]Address{}, (*p.Addresses)...)
	}
	return u
}

type Address struct {
	ID         string   `db:"id" json:"id"`
	UserID     string   `db:"user_id" json:"-"`
	Label      *string  `db:"label" json:"label,omitempty"`
	Recipient  string   `db:"recipient" json:"recipient" validate:"required"`
	Line1      string   `db:"line1" json:"line1" validate:"required"`
	Line2      *string  `db:"line2" json:"line2,omitempty"`
	City       string   `db:"city" json:"city" validate:"required"`
	PostalCode string   `db:"postal_code" json:"postalCode" validate:"required"`
	Province   *string  `db:"province" json:"province,omitempty"`
	Country    string   `db:"country" json:"country" validate:"required,len=2"`
	Phone      *string  `db:"phone" json:"phone,omitempty"`
	IsDefault  bool     `db:"is_default" json:"isDefault"`
	Lat        *float64 `db:"lat" json:"lat,omitempty"`
	Lng        *float64 `db:"lng" json:"lng,omitempty"`
	Position   int      `db:"position" json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}

// AestheticFolder is the customer's skin profile kept by the salon
type AestheticFolder struct {
	UserID      string                         `db:"user_id" json:"userId"`
	SkinType    relation.Relation              `db:"skin_type_id" json:"skinType,omitempty"`
	Needs       relation.List                  `db:"needs" json:"needs,omitempty"`
	Allergies   *string                        `db:"allergies" json:"allergies,omitempty"`
	Notes       *string                        `db:"notes" json:"notes,omitempty"`
	Preferences database.JSONB[map[string]any] `db:"preferences" json:"preferences,omitempty"`
	UpdatedAt   time.Time                      `db:"updated_at" json:"updatedAt"`
}

func (AestheticFolder) TableName() string {
	return "aesthetic_folders"
}

type OrderItemKind string

const (
	OrderItemProduct OrderItemKind = "product"
	OrderItemService OrderItemKind = "service"
)

type Order struct {
	ID            string                `db:"id" json:"id"`
	UserID        string                `db:"user_id" json:"userId"`
	Number        string                `db:"number" json:"number"`
	Status        string                `db:"status" json:"status"`
	PaymentStatus booking.PaymentStatus `db:"payment_status" json:"paymentStatus"`
	Total         float64               `db:"total" json:"total"`
	Currency      string                `db:"currency" json:"currency"`
	CreatedAt     time.Time             `db:"created_at" json:"createdAt"`

	Items []OrderItem `db:"-" json:"items"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        string                 `db:"id" json:"id"`
	OrderID   string                 `db:"order_id" json:"orderId"`
	Kind      OrderItemKind          `db:"kind" json:"kind"`
	Product   relation.Relation      `db:"product_id" json:"product,omitempty"`
	Title     relation.LocalizedText `db:"title" json:"title"`
	Quantity  int                    `db:"quantity" json:"quantity"`
	UnitPrice float64                `db:"unit_price" json:"unitPrice"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// ServiceSession is one purchased in-salon treatment and its booking state
type ServiceSession struct {
	ID                string                    `db:"id" json:"id"`
	OrderID           string                    `db:"order_id" json:"orderId"`
	UserID            string                    `db:"user_id" json:"userId"`
	ServiceName       relation.LocalizedText    `db:"service_name" json:"serviceName"`
	PaymentStatus     booking.PaymentStatus     `db:"payment_status" json:"paymentStatus"`
	AppointmentMode   booking.AppointmentMode   `db:"appointment_mode" json:"appointmentMode"`
	AppointmentStatus booking.AppointmentStatus `db:"appointment_status" json:"appointmentStatus"`
	RequestedDate     *string                   `db:"requested_date" json:"requestedDate"`
	RequestedTime     *string                   `db:"requested_time" json:"requestedTime"`
	ProposedDate      *string                   `db:"proposed_date" json:"proposedDate"`
	ProposedTime      *string                   `db:"proposed_time" json:"proposedTime"`
	ConsumedAt        *time.Time                `db:"consumed_at" json:"consumedAt,omitempty"`
	CreatedAt         time.Time                 `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time                 `db:"updated_at" json:"updatedAt"`
}

func (ServiceSession) TableName() string {
	return "service_sessions"
}

func (s ServiceSession) Schedule() booking.Schedule {
	return booking.Schedule{
		PaymentStatus:     s.PaymentStatus,
		AppointmentMode:   s.AppointmentMode,
		AppointmentStatus: s.AppointmentStatus,
		RequestedDate:     s.RequestedDate,
		RequestedTime:     s.RequestedTime,
		ProposedDate:      s.ProposedDate,
		ProposedTime:      s.ProposedTime,
	}
}

// WithSchedule copies the schedule fields of sch onto the session
func (s ServiceSession) WithSchedule(sch booking.Schedule) ServiceSession {
	s.PaymentStatus = sch.PaymentStatus
	s.AppointmentMode = sch.AppointmentMode
	s.AppointmentStatus = sch.AppointmentStatus
	s.RequestedDate = sch.RequestedDate
	s.RequestedTime = sch.RequestedTime
	s.ProposedDate = sch.ProposedDate
	s.ProposedTime = sch.ProposedTime
	return s
}
