package model

import (
	"fmt"
	"time"
)

// Mode selects which phases a run executes.
type Mode string

const (
	ModeBillingOnly Mode = "billing_only"
	ModeTeamOnly    Mode = "team_only"
	ModeBoth        Mode = "both"
)

// Valid reports whether m is a known processing mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeBillingOnly, ModeTeamOnly, ModeBoth:
		return true
	}
	return false
}

// IncludesBilling reports whether the mode runs the billing phase.
func (m Mode) IncludesBilling() bool {
	return m == ModeBillingOnly || m == ModeBoth
}

// IncludesTeam reports whether the mode runs the team-provisioning phase.
func (m Mode) IncludesTeam() bool {
	return m == ModeTeamOnly || m == ModeBoth
}

// Region selects which team-provisioning deployment receives requests.
type Region string

const (
	RegionCA Region = "ca"
	RegionUS Region = "us"
	RegionAU Region = "au"
	RegionEU Region = "eu"
	RegionUK Region = "uk"
)

// Regions lists every supported region code.
func Regions() []Region {
	return []Region{RegionCA, RegionUS, RegionAU, RegionEU, RegionUK}
}

// Valid reports whether r is a known region code.
func (r Region) Valid() bool {
	for _, known := range Regions() {
		if r == known {
			return true
		}
	}
	return false
}

// Plan is the team subscription plan provisioned for a migrated team.
type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanPro        Plan = "PRO"
	PlanProPlus    Plan = "PRO_PLUS"
	PlanEnterprise Plan = "ENTERPRISE"
)

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanProPlus, PlanEnterprise:
		return true
	}
	return false
}

// TeamOptions configures the team created for each migrated user.
type TeamOptions struct {
	IsManagedExternally  bool `json:"is_managed_externally"`
	AutoChargeNewMembers bool `json:"auto_charge_new_members"`
	AllowMemberInvites   bool `json:"allow_member_invites"`
	Plan                 Plan `json:"plan"`
}

// ProcessingConfig is the run-scoped configuration, passed explicitly through
// every orchestrator and processor call. It is never shared mutable state, so
// two runs with different configurations cannot interfere.
type ProcessingConfig struct {
	PriceID     string      `json:"price_id"`
	CouponID    string      `json:"coupon_id"`
	StartDate   time.Time   `json:"start_date"`
	Currency    string      `json:"currency"`
	Region      Region      `json:"region"`
	Mode        Mode        `json:"mode"`
	TeamOptions TeamOptions `json:"team_options"`
}

// Validate checks the closed enum fields and the fields each mode requires.
func (c ProcessingConfig) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("unknown processing mode %q", c.Mode)
	}
	if c.Mode.IncludesBilling() {
		if c.PriceID == "" {
			return fmt.Errorf("price_id is required for mode %q", c.Mode)
		}
		if c.StartDate.IsZero() {
			return fmt.Errorf("start_date is required for mode %q", c.Mode)
		}
	}
	if c.Mode.IncludesTeam() {
		if !c.Region.Valid() {
			return fmt.Errorf("unknown region %q", c.Region)
		}
		if !c.TeamOptions.Plan.Valid() {
			return fmt.Errorf("unknown plan %q", c.TeamOptions.Plan)
		}
	}
	return nil
}
