/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreyank-the-integrator/user-account-creation/model"
)

func validRequest() RunMigration {
	return RunMigration{
		Records: []MigrationRecord{
			{ExternalID: "user_1", Email: "a@example.com", TeamName: "Acme"},
		},
		Config: MigrationConfig{
			PriceID:   "price_1",
			StartDate: "2025-07-01",
			Mode:      "both",
			Region:    "us",
			TeamOptions: TeamOptions{
				Plan: "PRO",
			},
		},
	}
}

func TestValidateRunMigrationAcceptsValidRequest(t *testing.T) {
	r := validRequest()
	assert.NoError(t, r.ValidateRunMigration())
}

func TestValidateRunMigrationRequiresRecords(t *testing.T) {
	r := validRequest()
	r.Records = nil
	err := r.ValidateRunMigration()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "records is required")
}

func TestValidateRunMigrationRecordFields(t *testing.T) {
	t.Run("external id always required", func(t *testing.T) {
		r := validRequest()
		r.Records[0].ExternalID = ""
		err := r.ValidateRunMigration()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "external_id is required")
	})

	t.Run("email required for billing modes", func(t *testing.T) {
		r := validRequest()
		r.Records[0].Email = ""
		err := r.ValidateRunMigration()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email is required")
	})

	t.Run("email optional for team only", func(t *testing.T) {
		r := validRequest()
		r.Config.Mode = "team_only"
		r.Config.PriceID = ""
		r.Config.StartDate = ""
		r.Records[0].Email = ""
		assert.NoError(t, r.ValidateRunMigration())
	})

	t.Run("team name required for team modes", func(t *testing.T) {
		r := validRequest()
		r.Records[0].TeamName = ""
		err := r.ValidateRunMigration()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "team_name is required")
	})

	t.Run("team name optional for billing only", func(t *testing.T) {
		r := validRequest()
		r.Config.Mode = "billing_only"
		r.Config.Region = ""
		r.Records[0].TeamName = ""
		assert.NoError(t, r.ValidateRunMigration())
	})
}

func TestValidateRunMigrationConfig(t *testing.T) {
	t.Run("unknown mode", func(t *testing.T) {
		r := validRequest()
		r.Config.Mode = "sideways"
		assert.Error(t, r.ValidateRunMigration())
	})

	t.Run("billing mode requires price", func(t *testing.T) {
		r := validRequest()
		r.Config.PriceID = ""
		err := r.ValidateRunMigration()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "price_id")
	})

	t.Run("start date format", func(t *testing.T) {
		r := validRequest()
		r.Config.StartDate = "07/01/2025"
		err := r.ValidateRunMigration()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "YYYY-MM-DD")
	})

	t.Run("unknown region", func(t *testing.T) {
		r := validRequest()
		r.Config.Region = "mars"
		assert.Error(t, r.ValidateRunMigration())
	})

	t.Run("unknown plan", func(t *testing.T) {
		r := validRequest()
		r.Config.TeamOptions.Plan = "DIAMOND"
		err := r.ValidateRunMigration()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown plan")
	})
}

func TestToProcessingConfig(t *testing.T) {
	r := validRequest()
	r.Config.CouponID = "coupon_50"
	r.Config.Currency = "usd"
	r.Config.TeamOptions.AutoChargeNewMembers = true

	cfg, err := r.Config.ToProcessingConfig()
	require.NoError(t, err)
	assert.Equal(t, "price_1", cfg.PriceID)
	assert.Equal(t, "coupon_50", cfg.CouponID)
	assert.Equal(t, "usd", cfg.Currency)
	assert.Equal(t, model.ModeBoth, cfg.Mode)
	assert.Equal(t, model.RegionUS, cfg.Region)
	assert.Equal(t, model.PlanPro, cfg.TeamOptions.Plan)
	assert.True(t, cfg.TeamOptions.AutoChargeNewMembers)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate)
}

func TestToProcessingConfigRejectsBadDate(t *testing.T) {
	cfg := MigrationConfig{Mode: "billing_only", StartDate: "yesterday"}
	_, err := cfg.ToProcessingConfig()
	assert.Error(t, err)
}

func TestToRecords(t *testing.T) {
	r := validRequest()
	records := r.ToRecords()
	require.Len(t, records, 1)
	assert.Equal(t, "user_1", records[0].ExternalID)
	assert.Equal(t, "a@example.com", records[0].Email)
	assert.Equal(t, "Acme", records[0].TeamName)
}
