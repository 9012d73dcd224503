package migrator

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shreyank-the-integrator/user-account-creation/model"
)

var reportHeader = []string{
	"external_id",
	"email",
	"team_name",
	"status",
	"status_label",
	"severity",
	"customer_id",
	"subscription_id",
	"team_id",
	"old_currency",
	"new_currency",
	"start_date",
	"coupon_id",
	"error_message",
	"team_error_message",
	"team_http_status",
}

// WriteOutcomesCSV renders outcomes as a downloadable CSV report, one row
// per record in outcome order.
func WriteOutcomesCSV(w io.Writer, outcomes []model.Outcome) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(reportHeader); err != nil {
		return err
	}
	for _, outcome := range outcomes {
		teamStatus := ""
		if outcome.TeamHTTPStatus != 0 {
			teamStatus = strconv.Itoa(outcome.TeamHTTPStatus)
		}
		row := []string{
			outcome.ExternalID,
			outcome.Email,
			outcome.TeamName,
			string(outcome.Status),
			outcome.Status.Label(),
			outcome.Status.Severity(),
			outcome.CustomerID,
			outcome.SubscriptionID,
			outcome.TeamID,
			outcome.OldCurrency,
			outcome.NewCurrency,
			outcome.StartDate,
			outcome.CouponID,
			outcome.ErrorMessage,
			outcome.TeamErrorMessage,
			teamStatus,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
