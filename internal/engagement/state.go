package engagement

// PaymentThreshold is the number of user messages after which the payment
// popup becomes eligible.
const PaymentThreshold = 10

// State is the engagement record. SurveyVisible is session-local and is never
// persisted.
type State struct {
	MessageCount        int
	PaymentAcknowledged bool
	SurveyVisible       bool
	SurveyAcknowledged  bool
}

func (s State) ShouldShowPaymentPopup() bool {
	return s.MessageCount >= PaymentThreshold && !s.PaymentAcknowledged
}

func (s State) ShouldShowSurveyPopup() bool {
	return s.SurveyVisible && !s.SurveyAcknowledged
}
