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
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/shreyank-the-integrator/user-account-creation/model"
)

const startDateFormat = "2006-01-02"

// MigrationRecord is one customer row of a migration request.
type MigrationRecord struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	TeamName   string `json:"team_name"`
}

// TeamOptions mirrors model.TeamOptions on the wire.
type TeamOptions struct {
	IsManagedExternally  bool   `json:"is_managed_externally"`
	AutoChargeNewMembers bool   `json:"auto_charge_new_members"`
	AllowMemberInvites   bool   `json:"allow_member_invites"`
	Plan                 string `json:"plan"`
}

// MigrationConfig is the run configuration of a migration request.
type MigrationConfig struct {
	PriceID     string      `json:"price_id"`
	CouponID    string      `json:"coupon_id"`
	StartDate   string      `json:"start_date"`
	Currency    string      `json:"currency"`
	Region      string      `json:"region"`
	Mode        string      `json:"mode"`
	TeamOptions TeamOptions `json:"team_options"`
}

// RunMigration is the request body of POST /migrations.
type RunMigration struct {
	Records []MigrationRecord `json:"records"`
	Config  MigrationConfig   `json:"config"`
}

// ExportReport is the request body of POST /migrations/export.
type ExportReport struct {
	Results []model.Outcome `json:"results"`
}

func recordsValidation(r *RunMigration) validation.RuleFunc {
	return func(value interface{}) error {
		mode := model.Mode(r.Config.Mode)
		for i, record := range r.Records {
			if record.ExternalID == "" {
				return fmt.Errorf("records[%d]: external_id is required", i)
			}
			if mode.IncludesBilling() && record.Email == "" {
				return fmt.Errorf("records[%d]: email is required", i)
			}
			if mode.IncludesTeam() && record.TeamName == "" {
				return fmt.Errorf("records[%d]: team_name is required", i)
			}
		}
		return nil
	}
}

func validateDateFormat(format, value string) error {
	_, err := time.Parse(format, value)
	if err != nil {
		return errors.New("please format the start date as 'YYYY-MM-DD' (e.g., 2024-04-22)")
	}
	return nil
}

func (r *RunMigration) ValidateRunMigration() error {
	mode := model.Mode(r.Config.Mode)
	return validation.ValidateStruct(r,
		validation.Field(&r.Records, validation.Required.Error("records is required"), validation.By(recordsValidation(r))),
		validation.Field(&r.Config, validation.Required, validation.By(func(value interface{}) error {
			cfg, ok := value.(MigrationConfig)
			if !ok {
				return errors.New("invalid config type")
			}
			return cfg.validate(mode)
		})),
	)
}

func (c MigrationConfig) validate(mode model.Mode) error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Mode, validation.Required, validation.In(
			string(model.ModeBillingOnly), string(model.ModeTeamOnly), string(model.ModeBoth),
		)),
		validation.Field(&c.PriceID, validation.When(mode.IncludesBilling(), validation.Required.Error("price_id is required for billing modes"))),
		validation.Field(&c.StartDate, validation.When(mode.IncludesBilling(),
			validation.Required.Error("start_date is required for billing modes"),
			validation.By(func(value interface{}) error {
				dateStr, ok := value.(string)
				if !ok {
					return errors.New("invalid type for start date")
				}
				return validateDateFormat(startDateFormat, dateStr)
			}),
		)),
		validation.Field(&c.Region, validation.When(mode.IncludesTeam(), validation.Required, validation.In(
			string(model.RegionCA), string(model.RegionUS), string(model.RegionAU), string(model.RegionEU), string(model.RegionUK),
		))),
		validation.Field(&c.TeamOptions, validation.When(mode.IncludesTeam(), validation.By(func(value interface{}) error {
			opts, ok := value.(TeamOptions)
			if !ok {
				return errors.New("invalid team options type")
			}
			if !model.Plan(opts.Plan).Valid() {
				return fmt.Errorf("unknown plan %q", opts.Plan)
			}
			return nil
		}))),
	)
}

// ToRecords converts the wire records into domain input records.
func (r *RunMigration) ToRecords() []model.InputRecord {
	records := make([]model.InputRecord, len(r.Records))
	for i, record := range r.Records {
		records[i] = model.InputRecord{
			ExternalID: record.ExternalID,
			Email:      record.Email,
			TeamName:   record.TeamName,
		}
	}
	return records
}

// ToProcessingConfig converts the wire config into the run configuration
// threaded through the orchestrator.
func (c MigrationConfig) ToProcessingConfig() (model.ProcessingConfig, error) {
	cfg := model.ProcessingConfig{
		PriceID:  c.PriceID,
		CouponID: c.CouponID,
		Currency: c.Currency,
		Region:   model.Region(c.Region),
		Mode:     model.Mode(c.Mode),
		TeamOptions: model.TeamOptions{
			IsManagedExternally:  c.TeamOptions.IsManagedExternally,
			AutoChargeNewMembers: c.TeamOptions.AutoChargeNewMembers,
			AllowMemberInvites:   c.TeamOptions.AllowMemberInvites,
			Plan:                 model.Plan(c.TeamOptions.Plan),
		},
	}
	if c.StartDate != "" {
		startDate, err := time.Parse(startDateFormat, c.StartDate)
		if err != nil {
			return model.ProcessingConfig{}, err
		}
		cfg.StartDate = startDate
	}
	return cfg, nil
}
