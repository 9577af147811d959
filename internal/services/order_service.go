package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"petshop/internal/apperrors"
	"petshop/internal/dto"
	"petshop/internal/models"
	"petshop/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxOrderNumberAttempts = 5

// CreateOrderInput is what the buyer supplies at checkout.
type CreateOrderInput struct {
	ShippingAddress string
	PaymentMethod   string
	Notes           string
}

// OrderService turns carts into orders.
type OrderService struct {
	store       repositories.Store
	locks       *KeyLocker
	publisher   EventPublisher
	logger      *zap.Logger
	now         func() time.Time
	orderNumber func(now time.Time, userID uint) string
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(store repositories.Store, locks *KeyLocker, publisher EventPublisher, logger *zap.Logger) *OrderService {
	if locks == nil {
		locks = NewKeyLocker()
	}
	return &OrderService{
		store:       store,
		locks:       locks,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
		orderNumber: newOrderNumber,
	}
}

// CreateOrder converts the user's cart into an order priced from the
// catalog, then empties the cart. Both happen in one transaction. The user,
// the cart and its contents are checked before the checkout fields.
func (s *OrderService) CreateOrder(ctx context.Context, userID uint, in CreateOrderInput) (*dto.OrderResponse, error) {
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)

	unlock := s.locks.Lock(lockKeyCart(userID))
	defer unlock()

	var order models.Order
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		if _, err := r.Users().GetByID(ctx, userID); err != nil {
			return notFoundAs(err, "user %d not found", userID)
		}
		cart, err := r.Carts().FindByUserID(ctx, userID, true)
		if err != nil {
			return notFoundAs(err, "cart of user %d not found", userID)
		}
		items, err := r.Carts().ListItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return apperrors.EmptyCart("cart is empty")
		}
		if in.ShippingAddress == "" {
			return apperrors.InvalidInput("shipping address is required")
		}
		if in.PaymentMethod == "" {
			return apperrors.InvalidInput("payment method is required")
		}

		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(items))
		for _, it := range ComputeSummary(items).Items {
			if it.Product.ID == 0 {
				return apperrors.NotFound("product %d no longer exists", it.ProductID)
			}
			total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			orderItems = append(orderItems, models.OrderItem{
				ProductID:       it.ProductID,
				ProductName:     it.Product.Name,
				ProductImageURL: it.Product.ImageURL,
				Quantity:        it.Quantity,
				Price:           it.Product.Price,
			})
		}

		order = models.Order{
			UserID:          userID,
			TotalAmount:     total,
			Status:          models.OrderStatusPending,
			ShippingAddress: in.ShippingAddress,
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   models.PaymentStatusPending,
			Notes:           in.Notes,
			Items:           orderItems,
		}
		if err := s.insertWithUniqueNumber(ctx, r, &order); err != nil {
			return err
		}

		_, err = r.Carts().ClearItems(ctx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Uint("user_id", userID),
		zap.String("total", order.TotalAmount.String()),
	)
	publishEvent(s.publisher, s.logger, RoutingOrderCreated, OrderCreatedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      userID,
		TotalAmount: order.TotalAmount.String(),
		ItemCount:   len(order.Items),
	})

	resp := dto.NewOrderResponse(order)
	return &resp, nil
}

// insertWithUniqueNumber draws order numbers until one is free. A number
// taken between the check and the insert is caught by the unique index.
func (s *OrderService) insertWithUniqueNumber(ctx context.Context, r repositories.Repositories, order *models.Order) error {
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		number := s.orderNumber(s.now(), order.UserID)
		exists, err := r.Orders().ExistsByOrderNumber(ctx, number)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		order.OrderNumber = number
		err = r.Orders().Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		order.ID = 0
		for i := range order.Items {
			order.Items[i].ID = 0
			order.Items[i].OrderID = 0
		}
		s.logger.Warn("order number collision, retrying", zap.String("order_number", number), zap.Int("attempt", attempt))
	}
	return apperrors.New(apperrors.KindConflict, "could not allocate a unique order number after %d attempts", maxOrderNumberAttempts)
}

// GetOrdersByUser returns the user's orders, newest first.
func (s *OrderService) GetOrdersByUser(ctx context.Context, userID uint) ([]dto.OrderResponse, error) {
	orders, err := s.store.Orders().ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewOrderResponses(orders), nil
}

// GetOrderByID returns an order only to the user who placed it.
func (s *OrderService) GetOrderByID(ctx context.Context, orderID, userID uint) (*dto.OrderResponse, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, notFoundAs(err, "order %d not found", orderID)
	}
	if order.UserID != userID {
		return nil, apperrors.Unauthorized("order %d belongs to another user", orderID)
	}
	resp := dto.NewOrderResponse(*order)
	return &resp, nil
}
