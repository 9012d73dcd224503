package model

// Status is the closed set of terminal states a record can end a run in.
type Status string

const (
	StatusSuccess            Status = "success"
	StatusCustomerNotFound   Status = "customer_not_found"
	StatusCancelFailed       Status = "cancel_failed"
	StatusSubscriptionFailed Status = "subscription_failed"
	StatusTeamCreationFailed Status = "team_creation_failed"
)

// Severity buckets used by the reporting layer.
const (
	SeverityOK      = "ok"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

type statusPresentation struct {
	Label    string
	Severity string
}

// statusTable is the single source of truth for how a status renders.
// Presentation stays a lookup, never branching logic in the report layer.
var statusTable = map[Status]statusPresentation{
	StatusSuccess:            {Label: "Migrated", Severity: SeverityOK},
	StatusCustomerNotFound:   {Label: "Customer not found", Severity: SeverityWarning},
	StatusCancelFailed:       {Label: "Cancellation failed", Severity: SeverityError},
	StatusSubscriptionFailed: {Label: "Subscription failed", Severity: SeverityError},
	StatusTeamCreationFailed: {Label: "Team creation failed", Severity: SeverityError},
}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	_, ok := statusTable[s]
	return ok
}

// Label returns the human readable label for a status.
func (s Status) Label() string {
	if p, ok := statusTable[s]; ok {
		return p.Label
	}
	return string(s)
}

// Severity returns the severity bucket for a status.
func (s Status) Severity() string {
	if p, ok := statusTable[s]; ok {
		return p.Severity
	}
	return SeverityError
}
