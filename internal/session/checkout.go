package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Checkout places an order for the cart's lines. The cart decides which
// products and quantities are ordered; the backend prices them. The backend
// cart is replaced with the session cart, then turned into an order. Only
// a successful order clears the session cart.
func (s *Session) Checkout(ctx context.Context, shippingAddress string) (domain.Order, error) {
	ctx, id, err := s.AuthContext(ctx)
	if err != nil {
		return domain.Order{}, err
	}

	s.checkoutMu.Lock()
	defer s.checkoutMu.Unlock()

	snap := s.Cart.Snapshot()
	if len(snap.Lines) == 0 {
		checkoutsTotal.WithLabelValues("empty_cart").Inc()
		return domain.Order{}, apperrors.EmptyCart()
	}

	if err := s.api.ClearServerCart(ctx); err != nil {
		checkoutsTotal.WithLabelValues("failed").Inc()
		return domain.Order{}, fmt.Errorf("reset server cart: %w", err)
	}
	for _, l := range snap.Lines {
		if err := s.api.AddToServerCart(ctx, l.ProductID, l.Quantity); err != nil {
			checkoutsTotal.WithLabelValues("failed").Inc()
			return domain.Order{}, fmt.Errorf("submit cart line %d: %w", l.ProductID, err)
		}
	}

	order, err := s.api.CreateOrder(ctx, shippingAddress)
	if err != nil {
		checkoutsTotal.WithLabelValues("failed").Inc()
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.Cart.Clear()
	checkoutsTotal.WithLabelValues("placed").Inc()

	s.logger.InfoContext(ctx, "order placed",
		slog.Int("order_id", order.ID),
		slog.Int("lines", len(snap.Lines)),
		slog.String("total", order.TotalAmount.String()),
	)
	if !order.TotalAmount.Equal(snap.Total) {
		s.logger.InfoContext(ctx, "order total differs from cart total",
			slog.String("cart_total", snap.Total.String()),
			slog.String("order_total", order.TotalAmount.String()),
		)
	}
	s.publish(ctx, "order_placed", s.events.PublishOrderPlaced(ctx, s.ID, id, order, snap))
	return order, nil
}
