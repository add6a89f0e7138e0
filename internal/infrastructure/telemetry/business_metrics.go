// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the marketplace.
// It tracks order placement, coupon activity, and shipping-quote behavior.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	orderPlacedTotal  *Counter
	orderAmountTotal  *Counter
	couponClaimTotal  *Counter
	shippingTierTotal *Counter

	// Gauge metrics (point-in-time values)
	activeProductCount *Gauge
	pendingOrderCount  *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	catalogProvider CatalogMetricsProvider
}

// CatalogMetricsProvider provides catalog and order data for periodic metrics
// collection. This interface allows the telemetry layer to query application
// state without depending on the domain packages directly.
type CatalogMetricsProvider interface {
	// GetActiveProductCount returns the number of products live on the storefront
	GetActiveProductCount(ctx context.Context) (int64, error)

	// GetPendingOrderCount returns the number of orders awaiting confirmation
	GetPendingOrderCount(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	CatalogProvider CatalogMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		catalogProvider: cfg.CatalogProvider,
	}

	// Initialize counter metrics
	var err error

	// Order metrics
	bm.orderPlacedTotal, err = NewCounter(
		cfg.Meter,
		"storefront_order_placed_total",
		"Total number of orders placed",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderAmountTotal, err = NewCounter(
		cfg.Meter,
		"storefront_order_amount_total",
		"Total order amount in piastres",
		"{piastres}",
	)
	if err != nil {
		return nil, err
	}

	// Coupon metrics
	bm.couponClaimTotal, err = NewCounter(
		cfg.Meter,
		"storefront_coupon_claim_total",
		"Total number of coupon claim attempts by outcome",
		"{claims}",
	)
	if err != nil {
		return nil, err
	}

	// Shipping metrics
	bm.shippingTierTotal, err = NewCounter(
		cfg.Meter,
		"storefront_shipping_tier_total",
		"Shipping cost resolutions by tier",
		"{resolutions}",
	)
	if err != nil {
		return nil, err
	}

	// Catalog gauge metrics
	bm.activeProductCount, err = NewGauge(
		cfg.Meter,
		"storefront_active_products",
		"Number of products live on the storefront",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	bm.pendingOrderCount, err = NewGauge(
		cfg.Meter,
		"storefront_pending_orders",
		"Number of orders awaiting confirmation",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Order Metrics
// =============================================================================

// ScopeLabel labels order metrics with the storefront the order came from.
type ScopeLabel string

const (
	ScopeLabelGlobal ScopeLabel = "global"
	ScopeLabelVendor ScopeLabel = "vendor"
)

// RecordOrderPlaced records an order placement event.
// This should be called from the application layer when checkout completes.
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, scope ScopeLabel) {
	bm.orderPlacedTotal.Inc(ctx,
		AttrScope.String(string(scope)),
	)
}

// RecordOrderAmount records the order grand total.
// Amount should be in the smallest currency unit (piastres).
func (bm *BusinessMetrics) RecordOrderAmount(ctx context.Context, scope ScopeLabel, amountPiastres int64) {
	bm.orderAmountTotal.Add(ctx, amountPiastres,
		AttrScope.String(string(scope)),
	)
}

// RecordOrderWithAmount is a convenience method that records both order count and amount.
func (bm *BusinessMetrics) RecordOrderWithAmount(ctx context.Context, scope ScopeLabel, amount decimal.Decimal) {
	bm.RecordOrderPlaced(ctx, scope)

	// Convert to piastres (multiply by 100)
	amountPiastres := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordOrderAmount(ctx, scope, amountPiastres)
}

// =============================================================================
// Coupon Metrics
// =============================================================================

// CouponResult represents the outcome of a coupon claim for metrics labeling.
type CouponResult string

const (
	CouponResultClaimed  CouponResult = "claimed"
	CouponResultRefused  CouponResult = "refused"
	CouponResultReleased CouponResult = "released"
)

// RecordCouponClaim records a coupon claim attempt or compensation.
func (bm *BusinessMetrics) RecordCouponClaim(ctx context.Context, result CouponResult) {
	bm.couponClaimTotal.Inc(ctx,
		AttrCouponResult.String(string(result)),
	)
}

// =============================================================================
// Shipping Metrics
// =============================================================================

// RecordShippingResolution records which tier of the shipping cascade
// resolved a vendor group's fee. A rising platform_fallback share usually
// means vendors have stopped maintaining their zone tables.
func (bm *BusinessMetrics) RecordShippingResolution(ctx context.Context, tier string) {
	bm.shippingTierTotal.Inc(ctx,
		AttrShippingTier.String(tier),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects catalog metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectCatalogMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectCatalogMetrics(ctx)
		}
	}
}

// collectCatalogMetrics collects the catalog and order gauge metrics.
func (bm *BusinessMetrics) collectCatalogMetrics(ctx context.Context) {
	if bm.catalogProvider == nil {
		bm.logger.Debug("No catalog provider configured, skipping catalog metrics collection")
		return
	}

	activeProducts, err := bm.catalogProvider.GetActiveProductCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get active product count", zap.Error(err))
	} else {
		bm.activeProductCount.Record(ctx, activeProducts)
	}

	pendingOrders, err := bm.catalogProvider.GetPendingOrderCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get pending order count", zap.Error(err))
	} else {
		bm.pendingOrderCount.Record(ctx, pendingOrders)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
