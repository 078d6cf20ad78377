package usecases

import (
	"math"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"vininfo.backend/internal/domain/entities"
	domainerrors "vininfo.backend/internal/domain/errors"
)

func parseRequiredDate(raw string) (entities.Date, error) {
	d, err := entities.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return entities.Date{}, domainerrors.BadRequest("Invalid date")
	}
	return d, nil
}

// parseOptionalDate maps a missing or blank value to nil.
func parseOptionalDate(raw null.String) (*entities.Date, error) {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return nil, nil
	}
	d, err := parseRequiredDate(raw.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// blankToNull turns an empty string into a null value
func blankToNull(v null.String) null.String {
	if v.Valid && v.String == "" {
		return null.String{}
	}
	return v
}

// secondsUntil rounds the remaining wait up to whole seconds
func secondsUntil(wait time.Duration) int {
	return int(math.Ceil(wait.Seconds()))
}
