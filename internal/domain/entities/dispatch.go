package entities

// DispatchResult summarizes one reminder dispatch run
type DispatchResult struct {
	Message string   `json:"message"`
	Sent    int      `json:"sent"`
	Total   int      `json:"total"`
	Skipped int      `json:"skipped,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// BroadcastResult summarizes one marketing broadcast
type BroadcastResult struct {
	Message  string   `json:"message"`
	Sent     int      `json:"sent"`
	Total    int      `json:"total"`
	TestMode bool     `json:"testMode"`
	Errors   []string `json:"errors,omitempty"`
}

// MarketingInput is the operator supplied campaign content
type MarketingInput struct {
	Subject   string `json:"subject"`
	Preheader string `json:"preheader,omitempty"`
	Heading   string `json:"heading"`
	Content   string `json:"content"`
	CTAText   string `json:"ctaText,omitempty"`
	CTAURL    string `json:"ctaUrl,omitempty"`
	TestEmail string `json:"testEmail,omitempty"`
}

// MissingRequired reports whether subject, heading or content is blank
func (in *MarketingInput) MissingRequired() bool {
	return in.Subject == "" || in.Heading == "" || in.Content == ""
}

// Recipient is one marketing broadcast target
type Recipient struct {
	ID    string
	Email string
}
