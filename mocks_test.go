package migrator

import (
	"context"
	"sync"

	"github.com/shreyank-the-integrator/user-account-creation/model"
)

// fakeBilling is a scriptable BillingService. Nil hooks behave like a
// healthy provider.
type fakeBilling struct {
	mu    sync.Mutex
	calls map[string]int

	findFn   func(email string) (*model.BillingCustomer, error)
	cancelFn func(customerID string) (bool, string, error)
	clearFn  func(customerID string) bool
	createFn func(customerID string, cfg model.ProcessingConfig) (*model.BillingSubscription, error)
}

func (f *fakeBilling) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeBilling) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBilling) FindCustomerByEmail(_ context.Context, email string) (*model.BillingCustomer, error) {
	f.record("find")
	if f.findFn != nil {
		return f.findFn(email)
	}
	return &model.BillingCustomer{ID: "cus_" + email, Currency: "usd"}, nil
}

func (f *fakeBilling) CancelActiveSubscriptions(_ context.Context, customerID string) (bool, string, error) {
	f.record("cancel")
	if f.cancelFn != nil {
		return f.cancelFn(customerID)
	}
	return true, "usd", nil
}

func (f *fakeBilling) ClearBillingObjects(_ context.Context, customerID string) bool {
	f.record("clear")
	if f.clearFn != nil {
		return f.clearFn(customerID)
	}
	return true
}

func (f *fakeBilling) CreateSubscription(_ context.Context, customerID string, cfg model.ProcessingConfig) (*model.BillingSubscription, error) {
	f.record("create")
	if f.createFn != nil {
		return f.createFn(customerID, cfg)
	}
	return &model.BillingSubscription{ID: "sub_" + customerID, Currency: cfg.Currency}, nil
}

// fakeTeam is a scriptable TeamService.
type fakeTeam struct {
	mu      sync.Mutex
	calls   int
	region  model.Region
	creates []string

	createFn func(ownerID, teamName string) model.TeamResult
}

func (f *fakeTeam) SetRegion(region model.Region) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.region = region
	return nil
}

func (f *fakeTeam) CreateTeam(_ context.Context, ownerID, teamName string, _ model.TeamOptions) model.TeamResult {
	f.mu.Lock()
	f.calls++
	f.creates = append(f.creates, ownerID)
	f.mu.Unlock()
	if f.createFn != nil {
		return f.createFn(ownerID, teamName)
	}
	return model.TeamResult{Success: true, TeamID: "team_" + ownerID}
}

func (f *fakeTeam) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeTeam) owners() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.creates))
	copy(out, f.creates)
	return out
}

func newTestMigrator(billing BillingService, team TeamService) *Migrator {
	// Zero pacing keeps the tests free of real sleeps.
	return NewWithServices(billing, team, Pacing{BillingBatchSize: 8, TeamBatchSize: 3})
}
