package migrator

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/shreyank-the-integrator/user-account-creation/model"
)

// processBillingRecord drives one record through the billing step sequence:
// customer lookup, concurrent cancel + cleanup, a short settle pause, then
// subscription creation. Every failure is folded into the outcome; nothing
// escapes the processor boundary.
func (m *Migrator) processBillingRecord(ctx context.Context, record model.InputRecord, cfg model.ProcessingConfig) model.Outcome {
	ctx, span := tracer.Start(ctx, "Processing billing record")
	defer span.End()

	outcome := model.Outcome{
		ExternalID: record.ExternalID,
		Email:      record.Email,
		TeamName:   record.TeamName,
	}

	customer, err := m.billing.FindCustomerByEmail(ctx, record.Email)
	if err != nil {
		outcome.Status = model.StatusCustomerNotFound
		outcome.ErrorMessage = err.Error()
		return outcome
	}
	if customer == nil {
		outcome.Status = model.StatusCustomerNotFound
		return outcome
	}
	outcome.CustomerID = customer.ID
	outcome.OldCurrency = customer.Currency

	// Cancellation and billing-object cleanup touch independent remote
	// objects, so they run concurrently.
	var (
		wg          sync.WaitGroup
		cancelled   bool
		oldCurrency string
		cancelErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		cancelled, oldCurrency, cancelErr = m.billing.CancelActiveSubscriptions(ctx, customer.ID)
	}()
	go func() {
		defer wg.Done()
		if !m.billing.ClearBillingObjects(ctx, customer.ID) {
			logrus.Warnf("billing objects not fully cleared for customer %s", customer.ID)
		}
	}()
	wg.Wait()

	if oldCurrency != "" {
		outcome.OldCurrency = oldCurrency
	}

	if cancelErr != nil {
		outcome.Status = model.StatusCancelFailed
		outcome.ErrorMessage = cancelErr.Error()
		return outcome
	}
	if !cancelled {
		outcome.Status = model.StatusCancelFailed
		outcome.ErrorMessage = "one or more subscriptions could not be cancelled"
		return outcome
	}

	// Give the provider a moment to settle the cancellations before the
	// replacement subscription is created against the same customer.
	m.pause(ctx, m.pacing.CancelSettleDelay)

	sub, err := m.billing.CreateSubscription(ctx, customer.ID, cfg)
	if err != nil {
		outcome.Status = model.StatusSubscriptionFailed
		outcome.ErrorMessage = err.Error()
		return outcome
	}

	outcome.SubscriptionID = sub.ID
	outcome.NewCurrency = sub.Currency
	outcome.StartDate = cfg.StartDate.Format("2006-01-02")
	outcome.CouponID = cfg.CouponID
	outcome.Status = model.StatusSuccess

	if outcome.OldCurrency != "" && outcome.NewCurrency != "" && outcome.OldCurrency != outcome.NewCurrency {
		logrus.Warnf("currency changed for customer %s: %s -> %s", customer.ID, outcome.OldCurrency, outcome.NewCurrency)
	}

	return outcome
}

// processTeamRecord runs the team-provisioning step for a record whose
// billing phase (if any) already succeeded, upgrading its outcome in the
// returned copy.
func (m *Migrator) processTeamRecord(ctx context.Context, base model.Outcome, cfg model.ProcessingConfig) model.Outcome {
	ctx, span := tracer.Start(ctx, "Processing team record")
	defer span.End()

	result := m.team.CreateTeam(ctx, base.ExternalID, base.TeamName, cfg.TeamOptions)
	if result.Success {
		base.TeamID = result.TeamID
		base.Status = model.StatusSuccess
		base.TeamErrorMessage = ""
		base.TeamHTTPStatus = 0
		base.TeamResponseBody = ""
		return base
	}

	base.Status = model.StatusTeamCreationFailed
	base.TeamErrorMessage = result.ErrorMessage
	base.TeamHTTPStatus = result.HTTPStatus
	base.TeamResponseBody = result.ResponseBody
	return base
}
