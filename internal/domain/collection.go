package domain

import "time"

// EmailSourcePaymentPopup tags addresses captured by the payment popup.
const EmailSourcePaymentPopup = "payment_popup"

// EmailRecord is a single persisted email capture.
type EmailRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Source    string    `json:"source"`
	UserAgent string    `json:"user_agent"`
	IPAddress *string   `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

// SurveyResponse is a single persisted feature-preference survey answer.
type SurveyResponse struct {
	ID               string    `json:"id"`
	SelectedFeatures []string  `json:"selected_features"`
	CustomInput      *string   `json:"custom_input"`
	UserAgent        *string   `json:"user_agent"`
	IPAddress        *string   `json:"ip_address"`
	CreatedAt        time.Time `json:"created_at"`
}
