package entities

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ReminderNoteMaxLength is the longest accepted reminder note
const ReminderNoteMaxLength = 200

// ReminderType is the category of a reminder
type ReminderType string

const (
	ReminderTypeSTK                ReminderType = "stk"
	ReminderTypePovinneRuceni      ReminderType = "povinne_ruceni"
	ReminderTypeHavarijniPojisteni ReminderType = "havarijni_pojisteni"
	ReminderTypeServis             ReminderType = "servis"
	ReminderTypePrezutiPneu        ReminderType = "prezuti_pneu"
	ReminderTypeDalnicniZnamka     ReminderType = "dalnicni_znamka"
	ReminderTypeJine               ReminderType = "jine"
)

var reminderTypeLabels = map[ReminderType]string{
	ReminderTypeSTK:                "Termín STK",
	ReminderTypePovinneRuceni:      "Povinné ručení",
	ReminderTypeHavarijniPojisteni: "Havarijní pojištění",
	ReminderTypeServis:             "Servisní prohlídka",
	ReminderTypePrezutiPneu:        "Přezutí pneu",
	ReminderTypeDalnicniZnamka:     "Dálniční známka",
	ReminderTypeJine:               "Jiné",
}

// ParseReminderType validates a raw type value
func ParseReminderType(raw string) (ReminderType, bool) {
	t := ReminderType(raw)
	_, ok := reminderTypeLabels[t]
	return t, ok
}

// Valid reports whether t belongs to the closed set
func (t ReminderType) Valid() bool {
	_, ok := reminderTypeLabels[t]
	return ok
}

// Label returns the Czech display label, or the raw value for unknown types.
func (t ReminderType) Label() string {
	if label, ok := reminderTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// Reminder is a dated task attached to a vehicle
type Reminder struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"-"`
	VehicleID    uuid.UUID    `json:"vehicle_id"`
	Type         ReminderType `json:"type"`
	DueDate      Date         `json:"due_date"`
	Note         null.String  `json:"note"`
	IsDone       bool         `json:"is_done"`
	CreatedAt    time.Time    `json:"created_at"`
	EmailEnabled bool         `json:"email_enabled"`
	EmailSendAt  *Date        `json:"email_send_at"`
	EmailSentAt  null.Time    `json:"email_sent_at"`
}

// CreateReminderInput is the body of a reminder create request
type CreateReminderInput struct {
	VehicleID    string      `json:"vehicleId"`
	Type         string      `json:"type"`
	DueDate      string      `json:"dueDate"`
	Note         null.String `json:"note"`
	EmailEnabled null.Bool   `json:"emailEnabled"`
	EmailSendAt  null.String `json:"emailSendAt"`
}

// UpdateReminderInput is the body of a partial reminder update.
// An empty note or emailSendAt string clears the stored value.
type UpdateReminderInput struct {
	ID           string      `json:"id"`
	DueDate      null.String `json:"dueDate"`
	Note         null.String `json:"note"`
	IsDone       null.Bool   `json:"isDone"`
	EmailEnabled null.Bool   `json:"emailEnabled"`
	EmailSendAt  null.String `json:"emailSendAt"`
}

// IsEmpty reports whether no updatable field was supplied
func (in *UpdateReminderInput) IsEmpty() bool {
	return !(in.DueDate.Valid && in.DueDate.String != "") &&
		!in.Note.Valid && !in.IsDone.Valid && !in.EmailEnabled.Valid && !in.EmailSendAt.Valid
}

// ReminderUpdate is the validated set of columns to change
type ReminderUpdate struct {
	DueDate      *Date
	Note         null.String
	SetNote      bool
	IsDone       null.Bool
	EmailEnabled null.Bool
	EmailSendAt  *Date
	SetSendAt    bool
}

// NoteTooLong reports whether a note exceeds the maximum length
func NoteTooLong(note null.String) bool {
	return note.Valid && utf8.RuneCountInString(note.String) > ReminderNoteMaxLength
}

// DefaultEmailSendAt picks the send date: the explicit value when given,
// otherwise one day before the due date when email is enabled, otherwise none.
func DefaultEmailSendAt(due Date, emailEnabled bool, explicit *Date) *Date {
	if explicit != nil {
		return explicit
	}
	if !emailEnabled {
		return nil
	}
	d := due.AddDays(-1)
	return &d
}

// ReminderDelivery is a reminder due for email joined with its owner and vehicle.
type ReminderDelivery struct {
	ReminderID   uuid.UUID
	UserID       uuid.UUID
	Type         ReminderType
	DueDate      Date
	Note         null.String
	Email        string
	VehicleTitle null.String
	VehicleBrand null.String
	VehicleModel null.String
}

// VehicleName is the display name used in the email
func (d *ReminderDelivery) VehicleName() string {
	return VehicleDisplayName(d.VehicleTitle, d.VehicleBrand, d.VehicleModel)
}
