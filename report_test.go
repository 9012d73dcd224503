package migrator

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreyank-the-integrator/user-account-creation/model"
)

func TestWriteOutcomesCSV(t *testing.T) {
	outcomes := []model.Outcome{
		{
			ExternalID: "user_1", Email: "a@example.com", TeamName: "Acme",
			CustomerID: "cus_1", SubscriptionID: "sub_1", TeamID: "team_1",
			OldCurrency: "cad", NewCurrency: "usd",
			StartDate: "2025-07-01", CouponID: "coupon_50",
			Status: model.StatusSuccess,
		},
		{
			ExternalID: "user_2", Email: "b@example.com", TeamName: "Beta",
			Status: model.StatusCustomerNotFound,
		},
		{
			ExternalID: "user_3", Email: "c@example.com", TeamName: "Gamma",
			CustomerID: "cus_3", SubscriptionID: "sub_3",
			Status:           model.StatusTeamCreationFailed,
			TeamErrorMessage: "duplicate team name",
			TeamHTTPStatus:   409,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOutcomesCSV(&buf, outcomes))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, reportHeader, rows[0])

	assert.Equal(t, "user_1", rows[1][0])
	assert.Equal(t, "success", rows[1][3])
	assert.Equal(t, "Migrated", rows[1][4])
	assert.Equal(t, "ok", rows[1][5])
	assert.Equal(t, "coupon_50", rows[1][12])

	assert.Equal(t, "customer_not_found", rows[2][3])
	assert.Equal(t, "warning", rows[2][5])
	assert.Empty(t, rows[2][6])
	// A failed record's team status column is blank, not "0".
	assert.Empty(t, rows[2][15])

	assert.Equal(t, "team_creation_failed", rows[3][3])
	assert.Equal(t, "error", rows[3][5])
	assert.Equal(t, "duplicate team name", rows[3][14])
	assert.Equal(t, "409", rows[3][15])
}

func TestWriteOutcomesCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOutcomesCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, reportHeader, rows[0])
}
