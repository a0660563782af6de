package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	campaigndomain "github.com/smallbiznis/charity/internal/campaign/domain"
	campaignrepo "github.com/smallbiznis/charity/internal/campaign/repository"
	"github.com/smallbiznis/charity/internal/clock"
	"github.com/smallbiznis/charity/internal/donation/domain"
	"github.com/smallbiznis/charity/internal/donation/repository"
	"github.com/smallbiznis/charity/internal/gateway"
	gatewaydomain "github.com/smallbiznis/charity/internal/gateway/domain"
	"github.com/smallbiznis/charity/internal/gateway/sandbox"
	"github.com/smallbiznis/charity/internal/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	svc       domain.Service
	campaigns campaigndomain.Repository
	clock     *clock.FakeClock
	node      *snowflake.Node
}

type fakeGateway struct {
	calls  int
	create func(req gatewaydomain.TransactionRequest) (*gatewaydomain.Transaction, error)
}

func (f *fakeGateway) Provider() string { return "fake" }

func (f *fakeGateway) CreateTransaction(ctx context.Context, req gatewaydomain.TransactionRequest) (*gatewaydomain.Transaction, error) {
	f.calls++
	return f.create(req)
}

func (f *fakeGateway) ParseNotification(ctx context.Context, payload []byte, headers http.Header) (*gatewaydomain.Notification, error) {
	return nil, gatewaydomain.ErrInvalidPayload
}

func (f *fakeGateway) VerifyNotification(ctx context.Context, n *gatewaydomain.Notification) error {
	return nil
}

func newTestEnv(t *testing.T, gw gatewaydomain.Gateway) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	if gw == nil {
		gw = sandbox.New("sandbox-key")
	}
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	campaigns := campaignrepo.Provide()

	svc := New(Params{
		DB:           db,
		Log:          zaptest.NewLogger(t),
		GenID:        node,
		Clock:        fake,
		Repo:         repository.Provide(),
		CampaignRepo: campaigns,
		Gateways:     gateway.NewRegistry(gw.Provider(), gw),
	})

	return &testEnv{db: db, svc: svc, campaigns: campaigns, clock: fake, node: node}
}

func (e *testEnv) seedCampaign(t *testing.T, target, collected int64) campaigndomain.Campaign {
	t.Helper()
	now := e.clock.Now()
	id := e.node.Generate()
	campaign := campaigndomain.Campaign{
		ID:              id,
		Slug:            "clean-water-" + id.String(),
		Title:           "Clean Water",
		TargetAmount:    target,
		CollectedAmount: collected,
		Currency:        "IDR",
		Status:          campaigndomain.StatusOngoing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, e.campaigns.Insert(context.Background(), e.db, &campaign))
	return campaign
}

func (e *testEnv) createIntent(t *testing.T, campaignID snowflake.ID, amount int64) domain.IntentResult {
	t.Helper()
	res, err := e.svc.CreateIntent(context.Background(), domain.CreateIntentRequest{
		CampaignID: campaignID.String(),
		Email:      "donor@example.org",
		Name:       "Budi",
		Amount:     amount,
		Message:    "Semoga bermanfaat",
	})
	require.NoError(t, err)
	return res
}

func (e *testEnv) campaign(t *testing.T, id snowflake.ID) *campaigndomain.Campaign {
	t.Helper()
	c, err := e.campaigns.FindByID(context.Background(), e.db, id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func (e *testEnv) notificationCount(t *testing.T, orderID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&domain.PaymentNotification{}).Where("order_id = ?", orderID).Count(&count).Error)
	return count
}

func notification(orderID, status, gross string) *gatewaydomain.Notification {
	return &gatewaydomain.Notification{
		Provider:          sandbox.Provider,
		OrderID:           orderID,
		TransactionID:     "trx-" + orderID,
		TransactionStatus: status,
		StatusCode:        "200",
		GrossAmount:       gross,
		Currency:          "IDR",
		PaymentType:       "bank_transfer",
		Bank:              "bca",
		VANumbers:         []gatewaydomain.VANumber{{Bank: "bca", VANumber: "12345678901"}},
	}
}

func TestCreateIntentRecordsPendingDonation(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 500000, 0)

	res := env.createIntent(t, campaign.ID, 200000)
	assert.NotZero(t, res.DonorID)
	assert.Regexp(t, `^DONATION-[0-9a-f-]{36}$`, res.OrderID)
	assert.Equal(t, "sandbox-"+res.OrderID, res.Transaction.Token)
	assert.NotEmpty(t, res.Transaction.RedirectURL)

	donation, err := env.svc.GetByOrderID(context.Background(), res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, donation.Status)
	assert.Equal(t, int64(200000), donation.Amount)
	assert.Equal(t, "IDR", donation.Currency)
	assert.Equal(t, res.Transaction.Token, donation.PaymentToken)
	assert.Nil(t, donation.PaidAt)

	assert.Equal(t, int64(0), env.campaign(t, campaign.ID).CollectedAmount)
}

func TestCreateIntentUnknownCampaignBeforeGateway(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := New(Params{
		DB:           env.db,
		Log:          zaptest.NewLogger(t),
		GenID:        env.node,
		Clock:        env.clock,
		Repo:         repository.Provide(),
		CampaignRepo: env.campaigns,
		Gateways:     gateway.NewRegistry("midtrans"),
	})

	_, err := svc.CreateIntent(context.Background(), domain.CreateIntentRequest{
		CampaignID: env.node.Generate().String(),
		Email:      "donor@example.org",
		Name:       "Budi",
		Amount:     50000,
	})
	assert.ErrorIs(t, err, campaigndomain.ErrNotFound)

	campaign := env.seedCampaign(t, 500000, 0)
	_, err = svc.CreateIntent(context.Background(), domain.CreateIntentRequest{
		CampaignID: campaign.ID.String(),
		Email:      "donor@example.org",
		Name:       "Budi",
		Amount:     50000,
	})
	assert.ErrorIs(t, err, gatewaydomain.ErrNotConfigured)
}

func TestCreateIntentValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 500000, 0)

	valid := domain.CreateIntentRequest{
		CampaignID: campaign.ID.String(),
		Email:      "donor@example.org",
		Name:       "Budi",
		Amount:     50000,
	}

	cases := []struct {
		name   string
		mutate func(r *domain.CreateIntentRequest)
		want   error
	}{
		{name: "campaign id", mutate: func(r *domain.CreateIntentRequest) { r.CampaignID = "abc" }, want: domain.ErrInvalidCampaign},
		{name: "email", mutate: func(r *domain.CreateIntentRequest) { r.Email = "donor" }, want: domain.ErrInvalidEmail},
		{name: "name", mutate: func(r *domain.CreateIntentRequest) { r.Name = " " }, want: domain.ErrInvalidName},
		{name: "zero amount", mutate: func(r *domain.CreateIntentRequest) { r.Amount = 0 }, want: domain.ErrInvalidAmount},
		{name: "below minimum", mutate: func(r *domain.CreateIntentRequest) { r.Amount = 5000 }, want: domain.ErrAmountBelowMinimum},
		{name: "unknown campaign", mutate: func(r *domain.CreateIntentRequest) { r.CampaignID = "42" }, want: campaigndomain.ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			_, err := env.svc.CreateIntent(context.Background(), req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&domain.Donation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateIntentAnonymousWithoutName(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 500000, 0)

	res, err := env.svc.CreateIntent(context.Background(), domain.CreateIntentRequest{
		CampaignID:  campaign.ID.String(),
		Email:       "donor@example.org",
		Amount:      25000,
		IsAnonymous: true,
	})
	require.NoError(t, err)

	donation, err := env.svc.GetByOrderID(context.Background(), res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousName, donation.DonorName)
	assert.True(t, donation.IsAnonymous)
}

func TestCreateIntentGatewayRejection(t *testing.T) {
	gw := &fakeGateway{create: func(req gatewaydomain.TransactionRequest) (*gatewaydomain.Transaction, error) {
		return nil, &gatewaydomain.GatewayError{Provider: "fake", StatusCode: 400, Message: "transaction_details.gross_amount is not equal to the sum of item_details"}
	}}
	env := newTestEnv(t, gw)
	campaign := env.seedCampaign(t, 500000, 0)

	_, err := env.svc.CreateIntent(context.Background(), domain.CreateIntentRequest{
		CampaignID: campaign.ID.String(),
		Email:      "donor@example.org",
		Name:       "Budi",
		Amount:     200000,
	})

	var gwErr *gatewaydomain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "transaction_details.gross_amount is not equal to the sum of item_details", gwErr.Message)
	assert.Equal(t, 1, gw.calls, "gateway is called once")

	var count int64
	require.NoError(t, env.db.Model(&domain.Donation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateIntentTransportFailure(t *testing.T) {
	gw := &fakeGateway{create: func(req gatewaydomain.TransactionRequest) (*gatewaydomain.Transaction, error) {
		return nil, errors.New("dial tcp: connection refused")
	}}
	env := newTestEnv(t, gw)
	campaign := env.seedCampaign(t, 500000, 0)

	_, err := env.svc.CreateIntent(context.Background(), domain.CreateIntentRequest{
		CampaignID: campaign.ID.String(),
		Email:      "donor@example.org",
		Name:       "Budi",
		Amount:     200000,
	})

	var gwErr *gatewaydomain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "payment gateway unavailable", gwErr.Message)
}

func TestCreateIntentItemName(t *testing.T) {
	var got gatewaydomain.TransactionRequest
	gw := &fakeGateway{create: func(req gatewaydomain.TransactionRequest) (*gatewaydomain.Transaction, error) {
		got = req
		return &gatewaydomain.Transaction{Token: "tok", RedirectURL: "https://pay.example/tok"}, nil
	}}
	env := newTestEnv(t, gw)
	campaign := env.seedCampaign(t, 500000, 0)

	env.createIntent(t, campaign.ID, 200000)
	assert.Equal(t, "Donation: Clean Water", got.ItemName)
	assert.Equal(t, campaign.ID.String(), got.ItemID)
	assert.Equal(t, int64(200000), got.Amount)
	assert.Equal(t, "donor@example.org", got.Customer.Email)
}

func TestReconcileSettlementAppliesOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 500000, 0)
	intent := env.createIntent(t, campaign.ID, 200000)

	res, err := env.svc.Reconcile(context.Background(), notification(intent.OrderID, "settlement", "200000.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeApplied, res.Outcome)
	assert.Equal(t, domain.StatusSettlement, res.Donation.Status)
	assert.False(t, res.CampaignCompleted)
	require.NotNil(t, res.Donation.PaidAt)
	assert.Equal(t, "bank_transfer", res.Donation.PaymentType)
	assert.Equal(t, "bca", res.Donation.Bank)

	for i := 0; i < 5; i++ {
		env.clock.Advance(time.Minute)
		res, err = env.svc.Reconcile(context.Background(), notification(intent.OrderID, "settlement", "200000.00"))
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeDuplicate, res.Outcome)
	}

	after := env.campaign(t, campaign.ID)
	assert.Equal(t, int64(200000), after.CollectedAmount)
	assert.Equal(t, int64(1), after.DonorCount)
	assert.Equal(t, campaigndomain.StatusOngoing, after.Status)
	assert.Equal(t, int64(1), env.notificationCount(t, intent.OrderID))
}

func TestReconcileSettlementAndCaptureApplyOnce(t *testing.T) {
	cases := []struct {
		name  string
		first string
		then  string
		want  domain.Status
	}{
		{name: "settlement then capture", first: "settlement", then: "capture", want: domain.StatusSettlement},
		{name: "capture then settlement", first: "capture", then: "settlement", want: domain.StatusCapture},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			campaign := env.seedCampaign(t, 500000, 0)
			intent := env.createIntent(t, campaign.ID, 200000)

			first := notification(intent.OrderID, tc.first, "200000.00")
			first.FraudStatus = "accept"
			res, err := env.svc.Reconcile(context.Background(), first)
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeApplied, res.Outcome)

			then := notification(intent.OrderID, tc.then, "200000.00")
			then.FraudStatus = "accept"
			res, err = env.svc.Reconcile(context.Background(), then)
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeDuplicate, res.Outcome)
			assert.Equal(t, tc.want, res.Donation.Status)

			after := env.campaign(t, campaign.ID)
			assert.Equal(t, int64(200000), after.CollectedAmount)
			assert.Equal(t, int64(1), after.DonorCount)
			assert.Equal(t, int64(1), env.notificationCount(t, intent.OrderID))
		})
	}
}

func TestReconcileAmountMismatch(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 500000, 0)
	intent := env.createIntent(t, campaign.ID, 200000)

	res, err := env.svc.Reconcile(context.Background(), notification(intent.OrderID, "settlement", "150000.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAmountMismatch, res.Outcome)
	assert.Equal(t, domain.StatusSettlement, res.Donation.Status)
	assert.Nil(t, res.Donation.PaidAt)

	res, err = env.svc.Reconcile(context.Background(), notification(intent.OrderID, "settlement", "200000.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDuplicate, res.Outcome)

	after := env.campaign(t, campaign.ID)
	assert.Equal(t, int64(0), after.CollectedAmount)
	assert.Equal(t, int64(0), after.DonorCount)
}

func TestReconcileCurrencyMismatch(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 500000, 0)
	intent := env.createIntent(t, campaign.ID, 200000)

	n := notification(intent.OrderID, "settlement", "200000.00")
	n.Currency = "USD"
	res, err := env.svc.Reconcile(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAmountMismatch, res.Outcome)
	assert.Equal(t, int64(0), env.campaign(t, campaign.ID).CollectedAmount)
}

func TestReconcileUnknownOrderWritesNothing(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 500000, 0)

	_, err := env.svc.Reconcile(context.Background(), notification("DONATION-missing", "settlement", "200000.00"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, int64(0), env.notificationCount(t, "DONATION-missing"))
	assert.Equal(t, int64(0), env.campaign(t, campaign.ID).CollectedAmount)
}

func TestReconcileMissingFields(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.svc.Reconcile(context.Background(), notification("", "settlement", "1.00"))
	assert.ErrorIs(t, err, domain.ErrMissingOrderID)

	_, err = env.svc.Reconcile(context.Background(), notification("DONATION-1", "", "1.00"))
	assert.ErrorIs(t, err, domain.ErrMissingStatus)

	_, err = env.svc.Reconcile(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrMissingOrderID)
}

func TestReconcileUnsupportedStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 500000, 0)
	intent := env.createIntent(t, campaign.ID, 200000)

	_, err := env.svc.Reconcile(context.Background(), notification(intent.OrderID, "refund", "200000.00"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	donation, err := env.svc.GetByOrderID(context.Background(), intent.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, donation.Status)
}

func TestReconcileCompletesCampaign(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 100000, 90000)
	intent := env.createIntent(t, campaign.ID, 15000)

	res, err := env.svc.Reconcile(context.Background(), notification(intent.OrderID, "settlement", "15000.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeApplied, res.Outcome)
	assert.True(t, res.CampaignCompleted)

	after := env.campaign(t, campaign.ID)
	assert.Equal(t, int64(105000), after.CollectedAmount)
	assert.Equal(t, campaigndomain.StatusCompleted, after.Status)

	// A completed campaign keeps accepting donations without re-completing.
	second := env.createIntent(t, campaign.ID, 20000)
	res, err = env.svc.Reconcile(context.Background(), notification(second.OrderID, "settlement", "20000.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeApplied, res.Outcome)
	assert.False(t, res.CampaignCompleted)
	assert.Equal(t, int64(125000), env.campaign(t, campaign.ID).CollectedAmount)
}

func TestReconcileChallengeThenSettlement(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 500000, 0)
	intent := env.createIntent(t, campaign.ID, 200000)

	challenge := notification(intent.OrderID, "capture", "200000.00")
	challenge.FraudStatus = "challenge"
	res, err := env.svc.Reconcile(context.Background(), challenge)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeStatusUpdated, res.Outcome)
	assert.Equal(t, domain.StatusChallenge, res.Donation.Status)
	assert.Equal(t, int64(0), env.campaign(t, campaign.ID).CollectedAmount)

	res, err = env.svc.Reconcile(context.Background(), notification(intent.OrderID, "settlement", "200000.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeApplied, res.Outcome)
	assert.Equal(t, int64(200000), env.campaign(t, campaign.ID).CollectedAmount)
	assert.Equal(t, int64(2), env.notificationCount(t, intent.OrderID))
}

func TestReconcileStaleAfterFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 500000, 0)
	intent := env.createIntent(t, campaign.ID, 200000)

	res, err := env.svc.Reconcile(context.Background(), notification(intent.OrderID, "expire", "200000.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeStatusUpdated, res.Outcome)
	assert.Equal(t, domain.StatusExpire, res.Donation.Status)

	res, err = env.svc.Reconcile(context.Background(), notification(intent.OrderID, "pending", "200000.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeStale, res.Outcome)
	assert.Equal(t, domain.StatusExpire, res.Donation.Status)

	// A late success still counts.
	res, err = env.svc.Reconcile(context.Background(), notification(intent.OrderID, "settlement", "200000.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeApplied, res.Outcome)
	assert.Equal(t, int64(200000), env.campaign(t, campaign.ID).CollectedAmount)
}

func TestReconcileConcurrentRedeliveries(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 500000, 0)
	intent := env.createIntent(t, campaign.ID, 200000)

	const deliveries = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = map[domain.Outcome]int{}
	)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.svc.Reconcile(context.Background(), notification(intent.OrderID, "settlement", "200000.00"))
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			outcomes[res.Outcome]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, outcomes[domain.OutcomeApplied])
	assert.Equal(t, deliveries-1, outcomes[domain.OutcomeDuplicate])

	after := env.campaign(t, campaign.ID)
	assert.Equal(t, int64(200000), after.CollectedAmount)
	assert.Equal(t, int64(1), after.DonorCount)
}

func TestReconcileConcurrentDistinctDonations(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 1000000, 0)

	orders := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		orders = append(orders, env.createIntent(t, campaign.ID, 30000).OrderID)
	}

	var wg sync.WaitGroup
	for _, orderID := range orders {
		wg.Add(1)
		go func(orderID string) {
			defer wg.Done()
			_, err := env.svc.Reconcile(context.Background(), notification(orderID, "settlement", "30000.00"))
			assert.NoError(t, err)
		}(orderID)
	}
	wg.Wait()

	after := env.campaign(t, campaign.ID)
	assert.Equal(t, int64(150000), after.CollectedAmount)
	assert.Equal(t, int64(5), after.DonorCount)
}

func TestListDonorsMasksAnonymous(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 500000, 0)

	named := env.createIntent(t, campaign.ID, 20000)
	anon, err := env.svc.CreateIntent(context.Background(), domain.CreateIntentRequest{
		CampaignID:  campaign.ID.String(),
		Email:       "secret@example.org",
		Name:        "Siti",
		Amount:      30000,
		IsAnonymous: true,
	})
	require.NoError(t, err)
	pending := env.createIntent(t, campaign.ID, 40000)

	_, err = env.svc.Reconcile(context.Background(), notification(named.OrderID, "settlement", "20000.00"))
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	_, err = env.svc.Reconcile(context.Background(), notification(anon.OrderID, "settlement", "30000.00"))
	require.NoError(t, err)
	_, err = env.svc.Reconcile(context.Background(), notification(pending.OrderID, "pending", "40000.00"))
	require.NoError(t, err)

	donors, err := env.svc.ListDonors(context.Background(), campaign.ID, 0)
	require.NoError(t, err)
	require.Len(t, donors, 2)
	assert.Equal(t, domain.AnonymousName, donors[0].Name)
	assert.Equal(t, int64(30000), donors[0].Amount)
	assert.Equal(t, "Budi", donors[1].Name)
}

func TestListNotifications(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.seedCampaign(t, 500000, 0)
	intent := env.createIntent(t, campaign.ID, 200000)

	_, err := env.svc.Reconcile(context.Background(), notification(intent.OrderID, "pending", "200000.00"))
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	_, err = env.svc.Reconcile(context.Background(), notification(intent.OrderID, "settlement", "200000.00"))
	require.NoError(t, err)

	items, err := env.svc.ListNotifications(context.Background(), intent.OrderID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domain.OutcomeStatusUpdated, items[0].Outcome)
	assert.Equal(t, domain.OutcomeApplied, items[1].Outcome)
	assert.Len(t, items[0].ID, 26)

	_, err = env.svc.ListNotifications(context.Background(), "DONATION-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
