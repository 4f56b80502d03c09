package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"

	"filemart/internal/client"
	"filemart/internal/dto"
	"filemart/internal/identity"
	"filemart/internal/mailer"
	"filemart/internal/model"
	"filemart/internal/repository"

	"gorm.io/gorm"
)

// Lifecycle outcomes for one checkout attempt, used for logging. Rejected
// is a clean decline; Errored is infrastructure failure or tampering.
const (
	outcomeRedirected = "REDIRECTED"
	outcomeAuthorized = "AUTHORIZED"
	outcomeRejected   = "REJECTED"
	outcomeCancelled  = "CANCELLED"
	outcomeErrored    = "ERRORED"
)

// CheckoutService drives a purchase attempt from cart snapshot through the
// gateway redirect to a terminal outcome. There is no persisted attempt
// row: the attempt is reconstructed at confirm time from the callback token
// and the principal's cart, and the only durable effect is the ledger write
// on authorization.
type CheckoutService interface {
	Start(ctx context.Context, principal identity.Principal) (*dto.CheckoutResponse, error)
	Confirm(ctx context.Context, principal identity.Principal, confirmationToken string) (*dto.ReceiptResponse, error)
	Cancel(ctx context.Context, principal identity.Principal, buyOrder string)
}

type checkoutServiceImpl struct {
	db           *gorm.DB
	webpayClient client.WebpayClient
	baseURL      string
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	purchaseRepo repository.PurchaseRepository
	mail         mailer.Mailer
}

func NewCheckoutService(
	db *gorm.DB,
	webpayClient client.WebpayClient,
	baseURL string,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	purchaseRepo repository.PurchaseRepository,
	mail mailer.Mailer,
) CheckoutService {
	return &checkoutServiceImpl{
		db:           db,
		webpayClient: webpayClient,
		baseURL:      baseURL,
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		purchaseRepo: purchaseRepo,
		mail:         mail,
	}
}

// Start snapshots the cart, computes the amount from current catalog
// prices, and obtains the gateway redirect. Guests cannot start a checkout:
// a Purchase needs a durable identity to belong to.
func (s *checkoutServiceImpl) Start(ctx context.Context, principal identity.Principal) (*dto.CheckoutResponse, error) {
	email, ok := principal.LedgerEmail()
	if !ok {
		return nil, model.ErrIdentityRequired
	}

	items, err := s.cartRepo.List(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: list cart: %v", model.ErrUpstream, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", model.ErrNotFound)
	}

	amount, _, err := s.cartTotal(ctx, items)
	if err != nil {
		return nil, err
	}

	buyOrder := newBuyOrder()
	sessionID := newSessionID()
	returnURL := s.baseURL + "/api/checkout/confirm"

	resp, err := s.webpayClient.CreateTransaction(ctx, buyOrder, sessionID, amount, returnURL)
	if err != nil {
		log.Printf("checkout buy_order=%s outcome=%s create: %v", buyOrder, outcomeErrored, err)
		return nil, fmt.Errorf("%w: gateway create: %v", model.ErrUpstream, err)
	}

	log.Printf("checkout buy_order=%s outcome=%s amount=%d items=%d", buyOrder, outcomeRedirected, amount, len(items))

	return &dto.CheckoutResponse{
		BuyOrder:    buyOrder,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// Confirm handles the gateway's return callback. The redirect alone is not
// proof of payment: the commit round trip is, and the committed amount must
// match the server-computed cart total before anything is written. The
// ledger write and the cart clear share one transaction.
func (s *checkoutServiceImpl) Confirm(ctx context.Context, principal identity.Principal, confirmationToken string) (*dto.ReceiptResponse, error) {
	email, ok := principal.LedgerEmail()
	if !ok {
		return nil, model.ErrIdentityRequired
	}

	commit, err := s.webpayClient.CommitTransaction(ctx, confirmationToken)
	if err != nil {
		log.Printf("checkout outcome=%s commit: %v", outcomeErrored, err)
		return nil, fmt.Errorf("%w: gateway commit: %v", model.ErrUpstream, err)
	}

	if !commit.Approved() {
		// Clean decline. Cart is retained so the customer can retry.
		log.Printf("checkout buy_order=%s outcome=%s response_code=%d", commit.BuyOrder, outcomeRejected, commit.ResponseCode)
		return nil, model.ErrPaymentRejected
	}

	// Network retries can re-deliver the callback. A buyOrder that already
	// produced ledger rows is absorbed here; racing callbacks that slip
	// past this check are stopped by the ledger's unique index below.
	exists, err := s.purchaseRepo.ExistsForBuyOrder(ctx, commit.BuyOrder)
	if err != nil {
		return nil, fmt.Errorf("%w: dedupe check: %v", model.ErrUpstream, err)
	}
	if exists {
		log.Printf("checkout buy_order=%s duplicate callback absorbed", commit.BuyOrder)
		return nil, model.ErrDuplicateCallback
	}

	// Reconstruct the attempt from the principal's cart; the cart rows are
	// the snapshot, untouched until this point.
	items, err := s.cartRepo.List(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: list cart: %v", model.ErrUpstream, err)
	}
	if len(items) == 0 {
		log.Printf("checkout buy_order=%s outcome=%s: no cart to reconcile", commit.BuyOrder, outcomeErrored)
		return nil, fmt.Errorf("%w: no cart contents for callback", model.ErrUpstream)
	}

	total, products, err := s.cartTotal(ctx, items)
	if err != nil {
		return nil, err
	}

	if commit.Amount != total {
		// Tampering or inconsistency; always fatal, never corrected.
		log.Printf("checkout buy_order=%s outcome=%s committed=%d computed=%d",
			commit.BuyOrder, outcomeErrored, commit.Amount, total)
		return nil, model.ErrAmountMismatch
	}

	var wroteAny bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range products {
			created, err := s.purchaseRepo.Record(ctx, tx, &model.Purchase{
				ProductID: p.ID,
				BuyOrder:  commit.BuyOrder,
				Email:     email,
				Amount:    p.Price,
				Status:    model.PurchaseCompleted,
			})
			if err != nil {
				return fmt.Errorf("record purchase %s: %w", p.ID, err)
			}
			wroteAny = wroteAny || created
		}

		return s.cartRepo.Clear(ctx, tx, email)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reconcile purchase: %v", model.ErrUpstream, err)
	}
	if !wroteAny {
		// A racing callback beat us to every row.
		log.Printf("checkout buy_order=%s duplicate callback absorbed (race)", commit.BuyOrder)
		return nil, model.ErrDuplicateCallback
	}

	productIDs := make([]string, len(products))
	for i, p := range products {
		productIDs[i] = p.ID
	}

	log.Printf("checkout buy_order=%s outcome=%s amount=%d products=%d",
		commit.BuyOrder, outcomeAuthorized, commit.Amount, len(productIDs))

	// Receipt is best-effort.
	if err := s.mail.SendReceipt(ctx, email, commit.BuyOrder, productIDs, commit.Amount); err != nil {
		log.Printf("send receipt buy_order=%s: %v", commit.BuyOrder, err)
	}

	return &dto.ReceiptResponse{
		BuyOrder:   commit.BuyOrder,
		Amount:     commit.Amount,
		ProductIDs: productIDs,
	}, nil
}

// Cancel records nothing: an aborted attempt never reaches a ledger write,
// and the cart stays as it was.
func (s *checkoutServiceImpl) Cancel(ctx context.Context, principal identity.Principal, buyOrder string) {
	log.Printf("checkout buy_order=%s outcome=%s", buyOrder, outcomeCancelled)
}

// cartTotal resolves cart rows against the catalog and sums current prices.
// The client is never trusted with an amount.
func (s *checkoutServiceImpl) cartTotal(ctx context.Context, items []*model.CartItem) (int64, []*model.Product, error) {
	productIDs := make([]string, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.FindMany(ctx, productIDs)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: get products: %v", model.ErrUpstream, err)
	}
	if len(products) != len(items) {
		return 0, nil, fmt.Errorf("%w: cart references unknown products", model.ErrNotFound)
	}

	var total int64
	for _, p := range products {
		total += p.Price
	}

	return total, products, nil
}

// newBuyOrder returns a collision-resistant id within the gateway's 26-char
// buy_order limit.
func newBuyOrder() string {
	var b [10]byte
	rand.Read(b[:])
	return "FM" + hex.EncodeToString(b[:])
}

func newSessionID() string {
	var b [8]byte
	rand.Read(b[:])
	return "S" + hex.EncodeToString(b[:])
}
