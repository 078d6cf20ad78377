package entities

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// VehicleTitleMaxLength is the longest user given vehicle title
const VehicleTitleMaxLength = 60

// Vehicle is a saved registry lookup owned by a user
type Vehicle struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"-"`
	VIN       null.String     `json:"vin"`
	TP        null.String     `json:"tp"`
	ORV       null.String     `json:"orv"`
	Title     null.String     `json:"title"`
	Brand     null.String     `json:"brand"`
	Model     null.String     `json:"model"`
	Snapshot  json.RawMessage `json:"snapshot"`
	CreatedAt time.Time       `json:"created_at"`
}

// SaveVehicleInput is the body of a vehicle save request
type SaveVehicleInput struct {
	VIN      null.String     `json:"vin"`
	TP       null.String     `json:"tp"`
	ORV      null.String     `json:"orv"`
	Title    null.String     `json:"title"`
	Brand    null.String     `json:"brand"`
	Model    null.String     `json:"model"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// HasIdentifier reports whether at least one of vin, tp, orv is present
func (in *SaveVehicleInput) HasIdentifier() bool {
	return NormalizeIdentifier(in.VIN).Valid || NormalizeIdentifier(in.TP).Valid || NormalizeIdentifier(in.ORV).Valid
}

// RenameVehicleInput is the body of a title update
type RenameVehicleInput struct {
	ID    string      `json:"id"`
	Title null.String `json:"title"`
}

// NormalizeIdentifier trims a registry identifier; blank becomes null.
func NormalizeIdentifier(v null.String) null.String {
	if !v.Valid {
		return v
	}
	trimmed := strings.TrimSpace(v.String)
	if trimmed == "" {
		return null.String{}
	}
	return null.StringFrom(trimmed)
}

// NormalizeVehicleTitle trims the title, maps blank to null and cuts it to the maximum length.
func NormalizeVehicleTitle(v null.String) null.String {
	if !v.Valid {
		return v
	}
	trimmed := strings.TrimSpace(v.String)
	if trimmed == "" {
		return null.String{}
	}
	if utf8.RuneCountInString(trimmed) > VehicleTitleMaxLength {
		trimmed = string([]rune(trimmed)[:VehicleTitleMaxLength])
	}
	return null.StringFrom(trimmed)
}

// VehicleDisplayName is the name used in emails: the title, else "brand model" with a generic brand fallback.
func VehicleDisplayName(title, brand, model null.String) string {
	if title.Valid {
		if t := strings.TrimSpace(title.String); t != "" {
			return t
		}
	}
	b := "Vozidlo"
	if brand.Valid && brand.String != "" {
		b = brand.String
	}
	m := ""
	if model.Valid {
		m = model.String
	}
	return strings.TrimSpace(b + " " + m)
}
