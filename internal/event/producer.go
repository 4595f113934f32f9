package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topics for storefront events.
var (
	TopicUserLoggedIn    = pkgkafka.Topic("user", "logged_in")
	TopicUserLoggedOut   = pkgkafka.Topic("user", "logged_out")
	TopicWishlistAdded   = pkgkafka.Topic("wishlist", "added")
	TopicWishlistRemoved = pkgkafka.Topic("wishlist", "removed")
	TopicOrderPlaced     = pkgkafka.Topic("order", "placed")
)

// Aggregate types.
const (
	AggregateTypeUser  = "user"
	AggregateTypeOrder = "order"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront-session"

// SessionData is the payload of user.logged_in and user.logged_out.
type SessionData struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username,omitempty"`
}

// WishlistData is the payload of wishlist.added and wishlist.removed.
type WishlistData struct {
	UserID    string `json:"user_id"`
	ProductID int    `json:"product_id"`
}

// OrderPlacedData is the payload of order.placed.
type OrderPlacedData struct {
	OrderID     int             `json:"order_id"`
	UserID      string          `json:"user_id"`
	SessionID   string          `json:"session_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CartTotal   decimal.Decimal `json:"cart_total"`
	Items       []OrderItemData `json:"items"`
}

// OrderItemData is one line of an order.placed payload.
type OrderItemData struct {
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Publisher writes an event to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}
	if sid := logger.SessionIDFromContext(ctx); sid != "" {
		event.WithMetadata("session_id", sid)
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// PublishLoggedIn publishes a user.logged_in event.
func (p *Producer) PublishLoggedIn(ctx context.Context, sessionID string, id domain.Identity) error {
	return p.publish(ctx, TopicUserLoggedIn, id.UserID(), AggregateTypeUser, SessionData{
		SessionID: sessionID,
		UserID:    id.UserID(),
		Username:  id.Username,
	})
}

// PublishLoggedOut publishes a user.logged_out event.
func (p *Producer) PublishLoggedOut(ctx context.Context, sessionID string, id domain.Identity) error {
	return p.publish(ctx, TopicUserLoggedOut, id.UserID(), AggregateTypeUser, SessionData{
		SessionID: sessionID,
		UserID:    id.UserID(),
		Username:  id.Username,
	})
}

// PublishWishlistAdded publishes a wishlist.added event.
func (p *Producer) PublishWishlistAdded(ctx context.Context, id domain.Identity, productID domain.ProductID) error {
	return p.publish(ctx, TopicWishlistAdded, id.UserID(), AggregateTypeUser, WishlistData{
		UserID:    id.UserID(),
		ProductID: int(productID),
	})
}

// PublishWishlistRemoved publishes a wishlist.removed event.
func (p *Producer) PublishWishlistRemoved(ctx context.Context, id domain.Identity, productID domain.ProductID) error {
	return p.publish(ctx, TopicWishlistRemoved, id.UserID(), AggregateTypeUser, WishlistData{
		UserID:    id.UserID(),
		ProductID: int(productID),
	})
}

// PublishOrderPlaced publishes an order.placed event carrying the client
// cart lines that were submitted alongside the server's order totals.
func (p *Producer) PublishOrderPlaced(ctx context.Context, sessionID string, id domain.Identity, order domain.Order, cart domain.CartSnapshot) error {
	items := make([]OrderItemData, len(cart.Lines))
	for i, l := range cart.Lines {
		items[i] = OrderItemData{
			ProductID: int(l.ProductID),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return p.publish(ctx, TopicOrderPlaced, strconv.Itoa(order.ID), AggregateTypeOrder, OrderPlacedData{
		OrderID:     order.ID,
		UserID:      id.UserID(),
		SessionID:   sessionID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		CartTotal:   cart.Total,
		Items:       items,
	})
}
