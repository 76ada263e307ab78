package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/ecobazaarx/ecobazaar/internal/domain"
	"github.com/ecobazaarx/ecobazaar/internal/store"
	"github.com/ecobazaarx/ecobazaar/pkg/idx"
	"github.com/ecobazaarx/ecobazaar/pkg/slogx"
)

var (
	ErrEmptyCart       = errors.New("empty_cart")
	ErrOrderNotFound   = errors.New("order_not_found")
	ErrOrderNotPayable = errors.New("order_not_payable")
)

// Loyalty points accrue at one point per ten rupees of paid order value.
const paisePerLoyaltyPoint = 1000

// OrderService turns carts into orders and drives the simulated UPI
// payment flow. Payment is demo-grade on purpose: the intent renders a
// upi:// deep link plus a QR image, and confirmation is taken on the
// customer's word.
type OrderService struct {
	Store store.Store

	// Payee identity baked into generated UPI intents.
	PayeeVPA  string
	PayeeName string
}

// Checkout converts the account's cart into a pending order in one
// transaction: stock is consumed line by line, the cart lines are frozen
// into priced snapshots, and the cart is emptied. Any stock shortfall
// aborts the whole order.
func (s *OrderService) Checkout(ctx context.Context, accountID string) (domain.Order, error) {
	now := time.Now().UTC()
	var order domain.Order

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		lines, err := tx.Carts().ListItems(ctx, accountID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		order = domain.Order{
			ID:        idx.New().String(),
			AccountID: accountID,
			Status:    domain.OrderPending,
			CreatedAt: now,
			UpdatedAt: now,
		}

		for _, line := range lines {
			if err := tx.Products().AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
				if errors.Is(err, store.ErrConflict) {
					return ErrInsufficientStock
				}
				return err
			}

			order.Items = append(order.Items, domain.OrderItem{
				ID:          idx.New().String(),
				OrderID:     order.ID,
				ProductID:   line.ProductID,
				Name:        line.Name,
				PricePaise:  line.PricePaise,
				CarbonGrams: line.CarbonGrams,
				Quantity:    line.Quantity,
			})
			order.TotalPaise += line.PricePaise * line.Quantity
			order.TotalCarbonGrams += line.CarbonGrams * line.Quantity
		}

		if err := tx.Orders().CreateOrder(ctx, order); err != nil {
			return err
		}
		return tx.Carts().ClearCart(ctx, accountID)
	})
	if err != nil {
		return domain.Order{}, err
	}

	slogx.FromContext(ctx).Info("order created",
		slog.String("order_id", order.ID),
		slog.Int64("total_paise", order.TotalPaise),
	)
	return order, nil
}

// Get fetches an order, enforcing that non-admin callers only see their
// own.
func (s *OrderService) Get(ctx context.Context, actorID string, actorRole domain.Role, orderID string) (domain.Order, error) {
	order, err := s.Store.Orders().GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, err
	}
	if actorRole != domain.RoleAdmin && order.AccountID != actorID {
		return domain.Order{}, ErrOrderNotFound
	}
	return order, nil
}

// List returns the actor's own orders. Admins see every account's
// orders.
func (s *OrderService) List(ctx context.Context, actorID string, actorRole domain.Role, limit, offset int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	if actorRole == domain.RoleAdmin {
		return s.Store.Orders().ListOrders(ctx, limit, offset)
	}
	return s.Store.Orders().ListOrdersByAccount(ctx, actorID, limit, offset)
}

// PaymentIntent describes a rendered UPI payment request.
type PaymentIntent struct {
	OrderID    string
	UPIURI     string
	QRImageURL string
	TotalPaise int64
}

// Intent builds the UPI deep link and QR image URL for a pending order.
func (s *OrderService) Intent(ctx context.Context, actorID string, actorRole domain.Role, orderID string) (PaymentIntent, error) {
	order, err := s.Get(ctx, actorID, actorRole, orderID)
	if err != nil {
		return PaymentIntent{}, err
	}
	if order.Status != domain.OrderPending {
		return PaymentIntent{}, ErrOrderNotPayable
	}

	params := url.Values{}
	params.Set("pa", s.PayeeVPA)
	params.Set("pn", s.PayeeName)
	params.Set("am", formatRupees(order.TotalPaise))
	params.Set("cu", "INR")
	params.Set("tn", "Order "+order.ID)
	uri := "upi://pay?" + params.Encode()

	qr := "https://api.qrserver.com/v1/create-qr-code/?size=220x220&data=" + url.QueryEscape(uri)

	return PaymentIntent{
		OrderID:    order.ID,
		UPIURI:     uri,
		QRImageURL: qr,
		TotalPaise: order.TotalPaise,
	}, nil
}

// ConfirmPayment marks a pending order paid and credits the customer's
// loyalty points and saved-carbon tally. The pending-only transition in
// the store makes a double confirmation fail rather than double-credit.
func (s *OrderService) ConfirmPayment(ctx context.Context, actorID string, actorRole domain.Role, orderID string) (domain.Order, error) {
	order, err := s.Get(ctx, actorID, actorRole, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	now := time.Now().UTC()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Orders().MarkPaid(ctx, order.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOrderNotPayable
			}
			return err
		}
		points := order.TotalPaise / paisePerLoyaltyPoint
		return tx.Accounts().CreditCustomer(ctx, order.AccountID, points, order.TotalCarbonGrams)
	})
	if err != nil {
		return domain.Order{}, err
	}

	order.Status = domain.OrderPaid
	order.PaidAt = &now
	order.UpdatedAt = now

	slogx.FromContext(ctx).Info("order paid",
		slog.String("order_id", order.ID),
		slog.Int64("total_paise", order.TotalPaise),
	)
	return order, nil
}

// Cancel voids a pending order. Stock is restored for each snapshot line.
func (s *OrderService) Cancel(ctx context.Context, actorID string, actorRole domain.Role, orderID string) error {
	order, err := s.Get(ctx, actorID, actorRole, orderID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Orders().MarkCancelled(ctx, order.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOrderNotPayable
			}
			return err
		}
		for _, item := range order.Items {
			if err := tx.Products().AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				// Product may have been delisted since checkout.
				if errors.Is(err, store.ErrNotFound) {
					continue
				}
				return err
			}
		}
		return nil
	})
}

func formatRupees(paise int64) string {
	return fmt.Sprintf("%d.%02d", paise/100, paise%100)
}
