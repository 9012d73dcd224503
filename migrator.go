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

package migrator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/shreyank-the-integrator/user-account-creation/config"
	"github.com/shreyank-the-integrator/user-account-creation/model"
)

var tracer = otel.Tracer("Batch migration")

// BillingService is what the processor needs from the billing provider.
type BillingService interface {
	FindCustomerByEmail(ctx context.Context, email string) (*model.BillingCustomer, error)
	CancelActiveSubscriptions(ctx context.Context, customerID string) (bool, string, error)
	ClearBillingObjects(ctx context.Context, customerID string) bool
	CreateSubscription(ctx context.Context, customerID string, cfg model.ProcessingConfig) (*model.BillingSubscription, error)
}

// TeamService is what the processor needs from the team-provisioning API.
type TeamService interface {
	SetRegion(region model.Region) error
	CreateTeam(ctx context.Context, ownerID, teamName string, opts model.TeamOptions) model.TeamResult
}

// Pacing bounds the load a run puts on the downstream systems: batch sizes
// cap in-flight calls, inter-batch delays give the providers room to breathe,
// and the propagation delay lets billing state replicate before the team
// phase reads it.
type Pacing struct {
	BillingBatchSize  int
	TeamBatchSize     int
	BillingBatchDelay time.Duration
	TeamBatchDelay    time.Duration
	PropagationDelay  time.Duration
	CancelSettleDelay time.Duration
}

// DefaultPacing returns the production pacing. The team endpoint is the more
// fragile of the two systems, so its batches are smaller and spaced wider.
func DefaultPacing() Pacing {
	return Pacing{
		BillingBatchSize:  8,
		TeamBatchSize:     3,
		BillingBatchDelay: 1 * time.Second,
		TeamBatchDelay:    2 * time.Second,
		PropagationDelay:  10 * time.Second,
		CancelSettleDelay: 300 * time.Millisecond,
	}
}

// Migrator drives bulk customer migrations across the billing provider and
// the team-provisioning API.
type Migrator struct {
	billing BillingService
	team    TeamService
	pacing  Pacing
}

// NewMigrator initializes a Migrator from the process configuration, wiring
// up the Stripe-backed billing client and the regional team client.
func NewMigrator(conf *config.Configuration) (*Migrator, error) {
	return NewWithServices(NewBillingClient(conf), NewTeamClient(conf), DefaultPacing()), nil
}

// NewWithServices builds a Migrator around explicit service implementations.
// Production uses NewMigrator; tests inject fakes and zero pacing here.
func NewWithServices(billing BillingService, team TeamService, pacing Pacing) *Migrator {
	return &Migrator{billing: billing, team: team, pacing: pacing}
}

// pause sleeps for d or until the context is done, whichever comes first.
func (m *Migrator) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
