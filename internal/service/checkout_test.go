package service

import (
	"context"
	"errors"
	"testing"

	"filemart/internal/client"
	"filemart/internal/identity"
	"filemart/internal/mailer"
	"filemart/internal/model"
	"filemart/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := client.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fakeWebpay scripts the gateway's answers.
type fakeWebpay struct {
	createErr error
	commitErr error
	commit    client.CommitResponse

	createdBuyOrder string
	createdAmount   int64
	commitCalls     int
}

func (f *fakeWebpay) CreateTransaction(ctx context.Context, buyOrder, sessionID string, amount int64, returnURL string) (*client.CreateTransactionResponse, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdBuyOrder = buyOrder
	f.createdAmount = amount
	return &client.CreateTransactionResponse{
		Token:       "tok-" + buyOrder,
		URL:         "https://gateway.example/webpay",
		RedirectURL: "https://gateway.example/webpay?token_ws=tok-" + buyOrder,
	}, nil
}

func (f *fakeWebpay) CommitTransaction(ctx context.Context, confirmationToken string) (*client.CommitResponse, error) {
	f.commitCalls++
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	resp := f.commit
	return &resp, nil
}

type checkoutFixture struct {
	db           *gorm.DB
	gateway      *fakeWebpay
	cartRepo     repository.CartRepository
	purchaseRepo repository.PurchaseRepository
	svc          CheckoutService
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	db := newTestDB(t)
	gateway := &fakeWebpay{}
	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)

	ctx := context.Background()
	products := []*model.Product{
		{ID: "P1", Name: "P1", Price: 2000, Currency: "CLP", StoragePath: "p/p1.csv"},
		{ID: "P2", Name: "P2", Price: 3000, Currency: "CLP", StoragePath: "p/p2.csv"},
	}
	for _, p := range products {
		if err := db.WithContext(ctx).Create(p).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	return &checkoutFixture{
		db:           db,
		gateway:      gateway,
		cartRepo:     cartRepo,
		purchaseRepo: purchaseRepo,
		svc: NewCheckoutService(
			db, gateway, "http://localhost:8080",
			cartRepo, productRepo, purchaseRepo,
			mailer.NewLogMailer(),
		),
	}
}

func userPrincipal(email string) identity.Principal {
	return identity.Principal{Kind: identity.User, Subject: email, Email: email}
}

func (f *checkoutFixture) fillCart(t *testing.T, email string, productIDs ...string) {
	t.Helper()
	for _, id := range productIDs {
		if err := f.cartRepo.Add(context.Background(), &model.CartItem{Email: email, ProductID: id}); err != nil {
			t.Fatalf("fill cart: %v", err)
		}
	}
}

func TestStartRejectsGuests(t *testing.T) {
	f := newCheckoutFixture(t)

	guest := identity.Principal{Kind: identity.Guest, GuestID: "g-1"}
	if _, err := f.svc.Start(context.Background(), guest); !errors.Is(err, model.ErrIdentityRequired) {
		t.Errorf("guest checkout = %v, want ErrIdentityRequired", err)
	}

	anon := identity.Principal{Kind: identity.Anonymous}
	if _, err := f.svc.Start(context.Background(), anon); !errors.Is(err, model.ErrIdentityRequired) {
		t.Errorf("anonymous checkout = %v, want ErrIdentityRequired", err)
	}
}

func TestStartComputesAmountServerSide(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, "u@x.com", "P1", "P2")

	resp, err := f.svc.Start(context.Background(), userPrincipal("u@x.com"))
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if f.gateway.createdAmount != 5000 {
		t.Errorf("amount sent to gateway = %d, want 5000", f.gateway.createdAmount)
	}
	if resp.BuyOrder != f.gateway.createdBuyOrder {
		t.Errorf("buy order mismatch: %s vs %s", resp.BuyOrder, f.gateway.createdBuyOrder)
	}
	if len(resp.BuyOrder) == 0 || len(resp.BuyOrder) > 26 {
		t.Errorf("buy order %q outside gateway length constraint", resp.BuyOrder)
	}
	if resp.RedirectURL == "" {
		t.Error("no redirect url")
	}
}

func TestConfirmAuthorizedWritesLedgerAndClearsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, "u@x.com", "P1", "P2")
	f.gateway.commit = client.CommitResponse{
		BuyOrder: "ORDER123", Amount: 5000, Status: "AUTHORIZED", ResponseCode: 0,
	}

	ctx := context.Background()
	receipt, err := f.svc.Confirm(ctx, userPrincipal("u@x.com"), "tok-ORDER123")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if receipt.BuyOrder != "ORDER123" || receipt.Amount != 5000 || len(receipt.ProductIDs) != 2 {
		t.Errorf("receipt = %+v", receipt)
	}

	for _, id := range []string{"P1", "P2"} {
		ok, err := f.purchaseRepo.HasPurchased(ctx, "u@x.com", id)
		if err != nil || !ok {
			t.Errorf("purchase %s: ok=%v err=%v", id, ok, err)
		}
	}

	items, _ := f.cartRepo.List(ctx, "u@x.com")
	if len(items) != 0 {
		t.Errorf("cart not cleared: %+v", items)
	}
}

func TestConfirmReplayYieldsOnePurchaseSet(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, "u@x.com", "P1", "P2")
	f.gateway.commit = client.CommitResponse{
		BuyOrder: "ORDER123", Amount: 5000, Status: "AUTHORIZED", ResponseCode: 0,
	}

	ctx := context.Background()
	if _, err := f.svc.Confirm(ctx, userPrincipal("u@x.com"), "tok-ORDER123"); err != nil {
		t.Fatalf("first confirm: %v", err)
	}

	_, err := f.svc.Confirm(ctx, userPrincipal("u@x.com"), "tok-ORDER123")
	if !errors.Is(err, model.ErrDuplicateCallback) {
		t.Fatalf("replayed confirm = %v, want ErrDuplicateCallback", err)
	}

	var count int64
	f.db.Model(&model.Purchase{}).Where("buy_order = ?", "ORDER123").Count(&count)
	if count != 2 {
		t.Errorf("ledger rows for ORDER123 = %d, want exactly 2 (one per product)", count)
	}
}

func TestConfirmAmountMismatchWritesNothing(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, "u@x.com", "P1", "P2")
	// Gateway claims a different amount than the catalog total of 5000.
	f.gateway.commit = client.CommitResponse{
		BuyOrder: "ORDER124", Amount: 4999, Status: "AUTHORIZED", ResponseCode: 0,
	}

	ctx := context.Background()
	_, err := f.svc.Confirm(ctx, userPrincipal("u@x.com"), "tok-ORDER124")
	if !errors.Is(err, model.ErrAmountMismatch) {
		t.Fatalf("confirm = %v, want ErrAmountMismatch", err)
	}

	var count int64
	f.db.Model(&model.Purchase{}).Count(&count)
	if count != 0 {
		t.Errorf("ledger rows after mismatch = %d, want 0", count)
	}

	items, _ := f.cartRepo.List(ctx, "u@x.com")
	if len(items) != 2 {
		t.Errorf("cart changed after mismatch: %+v", items)
	}
}

func TestConfirmDeclineLeavesLedgerAndCartAlone(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, "u@x.com", "P1", "P2")
	f.gateway.commit = client.CommitResponse{
		BuyOrder: "ORDER124", Amount: 5000, Status: "FAILED", ResponseCode: -1,
	}

	ctx := context.Background()
	_, err := f.svc.Confirm(ctx, userPrincipal("u@x.com"), "tok-ORDER124")
	if !errors.Is(err, model.ErrPaymentRejected) {
		t.Fatalf("confirm = %v, want ErrPaymentRejected", err)
	}

	var count int64
	f.db.Model(&model.Purchase{}).Count(&count)
	if count != 0 {
		t.Errorf("ledger rows after decline = %d, want 0", count)
	}

	items, _ := f.cartRepo.List(ctx, "u@x.com")
	if len(items) != 2 {
		t.Errorf("cart changed after decline: %+v", items)
	}
}

func TestConfirmGatewayFailureIsUpstream(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, "u@x.com", "P1")
	f.gateway.commitErr = errors.New("connection reset")

	_, err := f.svc.Confirm(context.Background(), userPrincipal("u@x.com"), "tok-X")
	if !errors.Is(err, model.ErrUpstream) {
		t.Errorf("confirm = %v, want ErrUpstream", err)
	}

	var count int64
	f.db.Model(&model.Purchase{}).Count(&count)
	if count != 0 {
		t.Errorf("ledger rows after gateway failure = %d, want 0", count)
	}
}

func TestStartEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.Start(context.Background(), userPrincipal("u@x.com"))
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("empty cart start = %v, want ErrNotFound", err)
	}
}
