package model

// InputRecord is one customer row supplied by the caller. Records are
// immutable and uniquely keyed by ExternalID within a single run.
type InputRecord struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	TeamName   string `json:"team_name"`
}

// Outcome is the terminal result for one InputRecord. Exactly one Outcome
// exists per input record at the end of a run, matched by ExternalID.
type Outcome struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	TeamName   string `json:"team_name"`

	CustomerID     string `json:"customer_id,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	TeamID         string `json:"team_id,omitempty"`

	OldCurrency string `json:"old_currency,omitempty"`
	NewCurrency string `json:"new_currency,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	CouponID    string `json:"coupon_id,omitempty"`

	Status       Status `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`

	TeamErrorMessage string `json:"team_error_message,omitempty"`
	TeamHTTPStatus   int    `json:"team_http_status,omitempty"`
	TeamResponseBody string `json:"team_response_body,omitempty"`
}

// BillingCustomer is the slice of the billing provider's customer object the
// processor cares about.
type BillingCustomer struct {
	ID       string
	Currency string
}

// BillingSubscription is the slice of a newly created subscription the
// processor cares about.
type BillingSubscription struct {
	ID       string
	Currency string
}

// TeamResult is the structured result of one team-provisioning call.
type TeamResult struct {
	Success      bool
	TeamID       string
	ErrorMessage string
	HTTPStatus   int
	ResponseBody string
}

// MergeOutcomes returns a new outcome list where every entry of base whose
// ExternalID appears in upgrades is replaced by the upgraded outcome. Order
// and length of base are preserved, entries without an upgrade are untouched.
func MergeOutcomes(base []Outcome, upgrades map[string]Outcome) []Outcome {
	merged := make([]Outcome, len(base))
	for i, outcome := range base {
		if upgraded, ok := upgrades[outcome.ExternalID]; ok {
			merged[i] = upgraded
		} else {
			merged[i] = outcome
		}
	}
	return merged
}
