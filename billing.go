package migrator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v81"
	stripeclient "github.com/stripe/stripe-go/v81/client"

	"github.com/shreyank-the-integrator/user-account-creation/config"
	"github.com/shreyank-the-integrator/user-account-creation/internal/retry"
	"github.com/shreyank-the-integrator/user-account-creation/model"
)

// cancellableStatuses are the subscription states a migration tears down
// before creating the discounted replacement.
var cancellableStatuses = []string{"active", "trialing", "past_due"}

// billingGateway is the thin seam over the billing provider's wire API.
// Tests fake it; production uses the Stripe client.
type billingGateway interface {
	SearchCustomersByEmail(ctx context.Context, email string) ([]*stripe.Customer, error)
	ListSubscriptions(ctx context.Context, customerID, status string) ([]*stripe.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	ListOpenInvoices(ctx context.Context, customerID string) ([]*stripe.Invoice, error)
	VoidInvoice(ctx context.Context, invoiceID string) error
	ListPendingInvoiceItems(ctx context.Context, customerID string) ([]*stripe.InvoiceItem, error)
	DeleteInvoiceItem(ctx context.Context, invoiceItemID string) error
	CreateSubscription(ctx context.Context, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
}

// BillingClient wraps the billing provider with the shared rate-limit retry
// policy. Every remote call goes through the policy; rate-limit responses are
// retried with doubling backoff, anything else propagates immediately.
type BillingClient struct {
	gateway billingGateway
	retry   retry.Policy
}

// NewBillingClient builds a BillingClient backed by the Stripe API.
func NewBillingClient(conf *config.Configuration) *BillingClient {
	return newBillingClientWithGateway(newStripeGateway(conf.Billing.StripeKey), retry.Policy{
		MaxAttempts:     conf.Billing.MaxRetries,
		InitialInterval: time.Duration(conf.Billing.RetryBaseDelayMs) * time.Millisecond,
		Retryable:       isRateLimited,
	})
}

func newBillingClientWithGateway(gateway billingGateway, policy retry.Policy) *BillingClient {
	if policy.Retryable == nil {
		policy.Retryable = isRateLimited
	}
	return &BillingClient{gateway: gateway, retry: policy}
}

// isRateLimited reports whether err is a billing provider rate-limit signal.
func isRateLimited(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode == http.StatusTooManyRequests || stripeErr.Code == stripe.ErrorCodeRateLimit
	}
	return false
}

// FindCustomerByEmail looks up a customer by exact email match. A customer
// that does not exist is (nil, nil), not an error.
func (b *BillingClient) FindCustomerByEmail(ctx context.Context, email string) (*model.BillingCustomer, error) {
	var customers []*stripe.Customer
	err := b.retry.Do(ctx, func() error {
		var callErr error
		customers, callErr = b.gateway.SearchCustomersByEmail(ctx, email)
		return callErr
	})
	if err != nil {
		return nil, errors.Wrapf(err, "searching customer by email %s", email)
	}
	if len(customers) == 0 {
		return nil, nil
	}
	if len(customers) > 1 {
		logrus.Warnf("email %s matches %d customers, using the first", email, len(customers))
	}
	found := customers[0]
	return &model.BillingCustomer{ID: found.ID, Currency: string(found.Currency)}, nil
}

// CancelActiveSubscriptions cancels every subscription in a cancellable state
// without proration. Individual cancellation failures are logged and
// tolerated; the returned bool is true only when every subscription came
// down. The currency of the first subscription seen is returned so callers
// can compare it against the replacement's currency.
func (b *BillingClient) CancelActiveSubscriptions(ctx context.Context, customerID string) (bool, string, error) {
	oldCurrency := ""
	failed := 0

	for _, status := range cancellableStatuses {
		var subs []*stripe.Subscription
		err := b.retry.Do(ctx, func() error {
			var callErr error
			subs, callErr = b.gateway.ListSubscriptions(ctx, customerID, status)
			return callErr
		})
		if err != nil {
			return false, oldCurrency, errors.Wrapf(err, "listing %s subscriptions for %s", status, customerID)
		}

		for _, sub := range subs {
			if oldCurrency == "" {
				oldCurrency = string(sub.Currency)
			}
			subID := sub.ID
			err := b.retry.Do(ctx, func() error {
				return b.gateway.CancelSubscription(ctx, subID)
			})
			if err != nil {
				logrus.Warnf("failed to cancel subscription %s for customer %s: %v", subID, customerID, err)
				failed++
			}
		}
	}

	return failed == 0, oldCurrency, nil
}

// ClearBillingObjects voids the customer's open invoices and deletes pending
// invoice line items. Best-effort: individual failures are logged, never
// fatal. Returns true when every object was cleared.
func (b *BillingClient) ClearBillingObjects(ctx context.Context, customerID string) bool {
	cleared := true

	var invoices []*stripe.Invoice
	err := b.retry.Do(ctx, func() error {
		var callErr error
		invoices, callErr = b.gateway.ListOpenInvoices(ctx, customerID)
		return callErr
	})
	if err != nil {
		logrus.Warnf("failed to list open invoices for customer %s: %v", customerID, err)
		cleared = false
	}
	for _, invoice := range invoices {
		invoiceID := invoice.ID
		err := b.retry.Do(ctx, func() error {
			return b.gateway.VoidInvoice(ctx, invoiceID)
		})
		if err != nil {
			logrus.Warnf("failed to void invoice %s for customer %s: %v", invoiceID, customerID, err)
			cleared = false
		}
	}

	var items []*stripe.InvoiceItem
	err = b.retry.Do(ctx, func() error {
		var callErr error
		items, callErr = b.gateway.ListPendingInvoiceItems(ctx, customerID)
		return callErr
	})
	if err != nil {
		logrus.Warnf("failed to list pending invoice items for customer %s: %v", customerID, err)
		cleared = false
	}
	for _, item := range items {
		itemID := item.ID
		err := b.retry.Do(ctx, func() error {
			return b.gateway.DeleteInvoiceItem(ctx, itemID)
		})
		if err != nil {
			logrus.Warnf("failed to delete invoice item %s for customer %s: %v", itemID, customerID, err)
			cleared = false
		}
	}

	return cleared
}

// CreateSubscription creates the replacement subscription, backdated to the
// configured start date, anchored one year out, with proration and automatic
// tax disabled and the configured coupon applied.
func (b *BillingClient) CreateSubscription(ctx context.Context, customerID string, cfg model.ProcessingConfig) (*model.BillingSubscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(cfg.PriceID)},
		},
		BackdateStartDate:  stripe.Int64(cfg.StartDate.Unix()),
		BillingCycleAnchor: stripe.Int64(cfg.StartDate.AddDate(1, 0, 0).Unix()),
		ProrationBehavior:  stripe.String("none"),
		AutomaticTax: &stripe.SubscriptionAutomaticTaxParams{
			Enabled: stripe.Bool(false),
		},
	}
	if cfg.Currency != "" {
		params.Currency = stripe.String(cfg.Currency)
	}
	if cfg.CouponID != "" {
		params.Coupon = stripe.String(cfg.CouponID)
	}

	var sub *stripe.Subscription
	err := b.retry.Do(ctx, func() error {
		var callErr error
		sub, callErr = b.gateway.CreateSubscription(ctx, params)
		return callErr
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating subscription for customer %s", customerID)
	}
	return &model.BillingSubscription{ID: sub.ID, Currency: string(sub.Currency)}, nil
}

// stripeGateway is the production billingGateway on top of stripe-go.
type stripeGateway struct {
	api *stripeclient.API
}

func newStripeGateway(key string) *stripeGateway {
	api := &stripeclient.API{}
	api.Init(key, nil)
	return &stripeGateway{api: api}
}

func (g *stripeGateway) SearchCustomersByEmail(ctx context.Context, email string) ([]*stripe.Customer, error) {
	params := &stripe.CustomerSearchParams{
		SearchParams: stripe.SearchParams{
			Query:   fmt.Sprintf("email:'%s'", email),
			Context: ctx,
		},
	}
	iter := g.api.Customers.Search(params)
	var customers []*stripe.Customer
	for iter.Next() {
		customers = append(customers, iter.Customer())
	}
	return customers, iter.Err()
}

func (g *stripeGateway) ListSubscriptions(ctx context.Context, customerID, status string) ([]*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(status),
	}
	params.Context = ctx
	iter := g.api.Subscriptions.List(params)
	var subs []*stripe.Subscription
	for iter.Next() {
		subs = append(subs, iter.Subscription())
	}
	return subs, iter.Err()
}

func (g *stripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{
		InvoiceNow: stripe.Bool(false),
		Prorate:    stripe.Bool(false),
	}
	params.Context = ctx
	_, err := g.api.Subscriptions.Cancel(subscriptionID, params)
	return err
}

func (g *stripeGateway) ListOpenInvoices(ctx context.Context, customerID string) ([]*stripe.Invoice, error) {
	params := &stripe.InvoiceListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.InvoiceStatusOpen)),
	}
	params.Context = ctx
	iter := g.api.Invoices.List(params)
	var invoices []*stripe.Invoice
	for iter.Next() {
		invoices = append(invoices, iter.Invoice())
	}
	return invoices, iter.Err()
}

func (g *stripeGateway) VoidInvoice(ctx context.Context, invoiceID string) error {
	params := &stripe.InvoiceVoidInvoiceParams{}
	params.Context = ctx
	_, err := g.api.Invoices.VoidInvoice(invoiceID, params)
	return err
}

func (g *stripeGateway) ListPendingInvoiceItems(ctx context.Context, customerID string) ([]*stripe.InvoiceItem, error) {
	params := &stripe.InvoiceItemListParams{
		Customer: stripe.String(customerID),
		Pending:  stripe.Bool(true),
	}
	params.Context = ctx
	iter := g.api.InvoiceItems.List(params)
	var items []*stripe.InvoiceItem
	for iter.Next() {
		items = append(items, iter.InvoiceItem())
	}
	return items, iter.Err()
}

func (g *stripeGateway) DeleteInvoiceItem(ctx context.Context, invoiceItemID string) error {
	params := &stripe.InvoiceItemParams{}
	params.Context = ctx
	_, err := g.api.InvoiceItems.Del(invoiceItemID, params)
	return err
}

func (g *stripeGateway) CreateSubscription(ctx context.Context, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	params.Context = ctx
	return g.api.Subscriptions.New(params)
}
