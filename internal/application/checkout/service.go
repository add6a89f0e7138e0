package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/coupon"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// IdempotencyStore deduplicates order submissions keyed by a client-supplied
// Idempotency-Key header. MarkProcessed reports true when the key was newly
// recorded and false when a submission with the same key already went through.
type IdempotencyStore interface {
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// idempotencyKeyTTL bounds how long a submission key blocks retries. Long
// enough to cover client retry loops, short enough not to pin Redis memory.
const idempotencyKeyTTL = 24 * time.Hour

// CheckoutService quotes shipping and submits orders. Submission is a small
// saga: the coupon claim reserves a use before the order row exists, and is
// released again if persistence fails. A refused claim aborts the submission
// before any order row is written.
type CheckoutService struct {
	cartStore   cart.CartStore
	productRepo catalog.ProductRepository
	couponRepo  coupon.CouponRepository
	orderRepo   order.OrderRepository
	userRepo    identity.UserRepository
	resolver    *shipping.Resolver

	idempotency     IdempotencyStore
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	cartStore cart.CartStore,
	productRepo catalog.ProductRepository,
	couponRepo coupon.CouponRepository,
	orderRepo order.OrderRepository,
	userRepo identity.UserRepository,
	resolver *shipping.Resolver,
	logger *zap.Logger,
) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		cartStore:   cartStore,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		resolver:    resolver,
		logger:      logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *CheckoutService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetIdempotencyStore enables duplicate-submission protection
func (s *CheckoutService) SetIdempotencyStore(store IdempotencyStore) {
	s.idempotency = store
}

// SubmitWithIdempotencyKey guards Submit against client retries. A repeated
// key is rejected before the cart is read, so a retried request cannot place
// a second order. An empty key submits unguarded; a store failure degrades to
// an unguarded submission rather than blocking checkout.
func (s *CheckoutService) SubmitWithIdempotencyKey(ctx context.Context, sessionID string, userID *uuid.UUID, key string, req SubmitOrderRequest) (*orderapp.OrderResponse, error) {
	if key != "" && s.idempotency != nil {
		first, err := s.idempotency.MarkProcessed(ctx, "checkout:submit:"+key, idempotencyKeyTTL)
		if err != nil {
			s.logger.Warn("Idempotency check failed, submitting unguarded",
				zap.String("session_id", sessionID), zap.Error(err))
		} else if !first {
			return nil, shared.NewDomainError("DUPLICATE_SUBMISSION", "An order with this idempotency key was already submitted")
		}
	}
	return s.Submit(ctx, sessionID, userID, req)
}

// Quote resolves shipping for the session's cart destined to a region. The
// request sequence is echoed back unchanged so clients can drop stale quotes.
func (s *CheckoutService) Quote(ctx context.Context, sessionID string, req QuoteRequest) (*QuoteResponse, error) {
	c, err := s.cartStore.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_CART", "Cart is empty")
	}

	quote := s.resolver.Resolve(ctx, c.GroupByVendor(), req.Region, req.Sequence)
	s.recordShippingTiers(ctx, quote)

	subtotal := c.Subtotal()
	return &QuoteResponse{
		Quote:    quote,
		Subtotal: subtotal,
		Total:    subtotal.Add(quote.Total),
	}, nil
}

// Submit places an order from the session's cart. Only an authenticated,
// non-blocked customer may submit; the account status is re-read here so a
// block applied after login takes effect even while the token is still valid.
//
// Prices and vendor references are re-read from the catalog at submission
// time; the cart snapshot is display-only. The coupon, when present, is
// claimed before the order is persisted and released if persistence fails,
// so used_count never counts an order that does not exist. A refused claim
// returns shared.ErrCouponRefused and writes nothing.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string, userID *uuid.UUID, req SubmitOrderRequest) (*orderapp.OrderResponse, error) {
	if err := s.authorizeSubmitter(ctx, userID); err != nil {
		return nil, err
	}

	c, err := s.cartStore.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_CART", "Cart is empty")
	}

	address, err := valueobject.NewAddress(req.Governorate, req.City, req.Street)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}
	if req.AddressNotes != "" {
		address = address.WithNotes(req.AddressNotes)
	}

	items, groups, err := s.rebuildLines(ctx, c)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	quote := s.resolver.Resolve(ctx, groups, req.Governorate, 0)

	// Claim the coupon before creating the order; the claim is the only
	// step that mutates shared state ahead of persistence.
	var claimed *coupon.Coupon
	discount := decimal.Zero
	if req.CouponCode != "" {
		claimed, err = s.claimCoupon(ctx, req.CouponCode, subtotal)
		if err != nil {
			s.recordCouponResult(ctx, telemetry.CouponResultRefused)
			return nil, err
		}
		discount = claimed.Discount(subtotal)
		s.recordCouponResult(ctx, telemetry.CouponResultClaimed)
	}

	o, err := s.persistOrder(ctx, c, userID, req, address, items, quote.Total, discount, claimed)
	if err != nil {
		if claimed != nil {
			if relErr := s.couponRepo.Release(ctx, claimed.Code); relErr != nil {
				s.logger.Error("Failed to release coupon after order persistence failure",
					zap.String("code", claimed.Code),
					zap.Error(relErr),
				)
			} else {
				s.recordCouponResult(ctx, telemetry.CouponResultReleased)
			}
		}
		return nil, err
	}

	s.finalize(ctx, c, o, claimed, discount)

	response := orderapp.ToOrderResponse(o)
	return &response, nil
}

// authorizeSubmitter rejects anonymous and blocked accounts before any cart
// or coupon state is touched
func (s *CheckoutService) authorizeSubmitter(ctx context.Context, userID *uuid.UUID) error {
	if userID == nil {
		return shared.NewDomainError("UNAUTHORIZED", "Sign in to place an order")
	}
	user, err := s.userRepo.FindByID(ctx, *userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("UNAUTHORIZED", "Sign in to place an order")
		}
		return err
	}
	if user.IsBlocked() {
		return shared.NewDomainError("ACCOUNT_BLOCKED", "Account is blocked")
	}
	return nil
}

// rebuildLines re-reads every cart line from the catalog, pricing it fresh
// and normalizing the vendor reference to the canonical profile ID
func (s *CheckoutService) rebuildLines(ctx context.Context, c *cart.Cart) ([]order.OrderItem, []cart.VendorGroup, error) {
	fresh, err := cart.NewCart(c.SessionID)
	if err != nil {
		return nil, nil, err
	}

	items := make([]order.OrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, nil, shared.NewDomainError("PRODUCT_UNAVAILABLE",
					"Product "+line.Name+" is no longer available")
			}
			return nil, nil, err
		}
		if !product.IsActive() {
			return nil, nil, shared.NewDomainError("PRODUCT_UNAVAILABLE",
				"Product "+product.Name+" is no longer available")
		}

		unitPrice := product.VariantPrice(line.Size, line.Color)
		items = append(items, order.OrderItem{
			ProductID:       product.ID,
			VendorProfileID: product.VendorProfileID,
			Name:            product.Name,
			Size:            line.Size,
			Color:           line.Color,
			UnitPrice:       unitPrice,
			Quantity:        line.Quantity,
		})

		// Rebuild the grouping input with fresh vendor references too
		if err := fresh.AddItem(cart.CartItem{
			ProductID:       product.ID,
			Name:            product.Name,
			Size:            line.Size,
			Color:           line.Color,
			UnitPrice:       unitPrice,
			VendorProfileID: product.VendorProfileID,
			FreeShipping:    product.FreeShipping,
		}, line.Quantity); err != nil {
			return nil, nil, err
		}
	}
	return items, fresh.GroupByVendor(), nil
}

// claimCoupon validates and atomically reserves one coupon use
func (s *CheckoutService) claimCoupon(ctx context.Context, code string, subtotal decimal.Decimal) (*coupon.Coupon, error) {
	code = coupon.NormalizeCode(code)
	cpn, err := s.couponRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrCouponRefused
		}
		return nil, err
	}
	// Subtotal and expiry are checked here; the conditional update inside
	// Claim re-checks status, expiry and the usage limit atomically.
	if err := cpn.Claimable(subtotal, time.Now()); err != nil {
		return nil, err
	}
	return s.couponRepo.Claim(ctx, code)
}

func (s *CheckoutService) persistOrder(
	ctx context.Context,
	c *cart.Cart,
	userID *uuid.UUID,
	req SubmitOrderRequest,
	address valueobject.Address,
	items []order.OrderItem,
	shippingTotal, discount decimal.Decimal,
	claimed *coupon.Coupon,
) (*order.Order, error) {
	orderNumber, err := s.orderRepo.NextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(orderNumber, order.Customer{
		Name:  req.CustomerName,
		Email: req.CustomerEmail,
		Phone: req.CustomerPhone,
	}, address, items, shippingTotal, discount)
	if err != nil {
		return nil, err
	}
	o.Notes = req.Notes
	if userID != nil {
		o.AttachUser(*userID)
	} else if c.UserID != nil {
		o.AttachUser(*c.UserID)
	}
	if claimed != nil {
		o.AttachCoupon(claimed.Code)
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// finalize runs the best-effort tail of the saga: redemption audit row, cart
// teardown, sold counters and metrics. The order is already durable; none of
// these failures roll it back.
func (s *CheckoutService) finalize(ctx context.Context, c *cart.Cart, o *order.Order, claimed *coupon.Coupon, discount decimal.Decimal) {
	if claimed != nil {
		redemption := coupon.NewRedemption(claimed, o.ID, o.UserID, discount)
		if err := s.couponRepo.RecordRedemption(ctx, redemption); err != nil {
			s.logger.Error("Failed to record coupon redemption",
				zap.String("code", claimed.Code),
				zap.String("order_number", o.OrderNumber),
				zap.Error(err),
			)
		}
	}

	if err := s.cartStore.Delete(ctx, c.SessionID); err != nil {
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("session_id", c.SessionID),
			zap.Error(err),
		)
	}

	for _, it := range o.Items {
		if err := s.productRepo.IncrementSoldCount(ctx, it.ProductID, it.Quantity); err != nil {
			s.logger.Warn("Failed to increment sold count",
				zap.String("product_id", it.ProductID.String()),
				zap.Error(err),
			)
		}
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderWithAmount(ctx, telemetry.ScopeLabelGlobal, o.Total)
	}

	s.logger.Info("Order placed",
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.Total.String()),
		zap.Int("items", len(o.Items)),
	)
}

func (s *CheckoutService) recordShippingTiers(ctx context.Context, quote shipping.Quote) {
	if s.businessMetrics == nil {
		return
	}
	for _, res := range quote.Groups {
		s.businessMetrics.RecordShippingResolution(ctx, string(res.Tier))
	}
}

func (s *CheckoutService) recordCouponResult(ctx context.Context, result telemetry.CouponResult) {
	if s.businessMetrics != nil {
		s.businessMetrics.RecordCouponClaim(ctx, result)
	}
}
