package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"vininfo.backend/internal/domain/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

const unsubscribePath = "/api/email/unsubscribe?token="

// ReminderEmail is the data of one reminder notification
type ReminderEmail struct {
	TypeLabel        string
	VehicleName      string
	DueDate          entities.Date
	Note             string
	UnsubscribeToken string
}

// MarketingEmail is the operator content of a broadcast. Content is trusted HTML.
type MarketingEmail struct {
	Subject          string
	Preheader        string
	Heading          string
	Content          string
	CTAText          string
	CTAURL           string
	UnsubscribeToken string
}

// Page is a small standalone HTML page
type Page struct {
	Title   string
	Message string
	Success bool
}

// Renderer builds email bodies and landing pages from embedded templates
type Renderer struct {
	baseURL   string
	templates map[string]*template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer(baseURL string) (*Renderer, error) {
	r := &Renderer{
		baseURL:   strings.TrimRight(baseURL, "/"),
		templates: map[string]*template.Template{},
	}
	for _, name := range []string{"verification", "reminder", "marketing", "unsubscribe"} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// BaseURL is the public origin used in links
func (r *Renderer) BaseURL() string {
	return r.baseURL
}

// UnsubscribeURL builds the one-click unsubscribe link for a token
func (r *Renderer) UnsubscribeURL(token string) string {
	return r.baseURL + unsubscribePath + token
}

// VerificationSubject is the subject of the verification email
func (r *Renderer) VerificationSubject() string {
	return "Ověřovací kód pro VINInfo"
}

// Verification renders the email carrying a verification code
func (r *Renderer) Verification(code string) (string, error) {
	return r.execute("verification", struct {
		Code           string
		UnsubscribeURL string
	}{Code: code})
}

// ReminderSubject builds "Připomínka: {label} - {vehicle}"
func (r *Renderer) ReminderSubject(typeLabel, vehicleName string) string {
	return fmt.Sprintf("Připomínka: %s - %s", typeLabel, vehicleName)
}

// Reminder renders a reminder notification
func (r *Renderer) Reminder(data ReminderEmail) (string, error) {
	return r.execute("reminder", struct {
		TypeLabel       string
		VehicleName     string
		DueDate         string
		Note            string
		ClientZoneURL   string
		UnsubscribeURL  string
		UnsubscribeText string
	}{
		TypeLabel:       data.TypeLabel,
		VehicleName:     data.VehicleName,
		DueDate:         FormatCzechDate(data.DueDate.Time()),
		Note:            data.Note,
		ClientZoneURL:   r.baseURL + "/klientska-zona",
		UnsubscribeURL:  r.UnsubscribeURL(data.UnsubscribeToken),
		UnsubscribeText: "Odhlásit se z odběru notifikací",
	})
}

// Marketing renders a broadcast email
func (r *Renderer) Marketing(data MarketingEmail) (string, error) {
	return r.execute("marketing", struct {
		Subject         string
		Preheader       string
		Heading         string
		Content         template.HTML
		CTAText         string
		CTAURL          string
		UnsubscribeURL  string
		UnsubscribeText string
	}{
		Subject:         data.Subject,
		Preheader:       data.Preheader,
		Heading:         data.Heading,
		Content:         template.HTML(data.Content),
		CTAText:         data.CTAText,
		CTAURL:          data.CTAURL,
		UnsubscribeURL:  r.UnsubscribeURL(data.UnsubscribeToken),
		UnsubscribeText: "Odhlásit se z marketingových emailů",
	})
}

// Page renders the unsubscribe landing page
func (r *Renderer) Page(p Page) (string, error) {
	return r.execute("unsubscribe", p)
}

func (r *Renderer) execute(name string, data interface{}) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return "", fmt.Errorf("execute %s template: %w", name, err)
	}
	return buf.String(), nil
}
