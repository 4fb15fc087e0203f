package service

import (
	"errors"
	"sort"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidOrderID     = apperrors.Validation("Invalid order ID")
	ErrInvalidOrderStatus = apperrors.Validation("Invalid order status")
	ErrOrderNotFound      = apperrors.NotFound("Order not found")
)

// MonthlyRevenue is revenue for one calendar month, keyed "2006-01"
type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type OrderAnalytics struct {
	TotalRevenue      float64          `json:"totalRevenue"`
	TotalOrders       int              `json:"totalOrders"`
	PaidOrders        int              `json:"paidOrders"`
	AverageOrderValue float64          `json:"averageOrderValue"`
	MonthlyRevenue    []MonthlyRevenue `json:"monthlyRevenue"`
	StatusCounts      map[string]int   `json:"statusCounts"`
}

type OrderService interface {
	GetMyOrders(userID string) ([]model.Order, error)
	GetOrder(userID string, role model.UserRole, orderID string) (*model.Order, error)
	ListOrders(status string) ([]model.Order, error)
	UpdateOrderStatus(orderID, status string) (*model.Order, error)
	DeleteOrder(orderID string) error
	GetAnalytics() (*OrderAnalytics, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

func (s *orderService) GetMyOrders(userID string) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		return nil, apperrors.Upstream(err, "Failed to load orders")
	}
	return orders, nil
}

func (s *orderService) load(orderID string) (*model.Order, error) {
	if !validID(orderID) {
		return nil, ErrInvalidOrderID
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, apperrors.Upstream(err, "Failed to load order")
	}
	return order, nil
}

// GetOrder returns the order to its owner or to an admin
func (s *orderService) GetOrder(userID string, role model.UserRole, orderID string) (*model.Order, error) {
	order, err := s.load(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID && role != model.RoleAdmin {
		logger.Warn("Order accessed by non-owner", map[string]interface{}{
			"order_id": orderID,
			"user_id":  userID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(status string) ([]model.Order, error) {
	filter := model.OrderStatus(status)
	if status != "" && !filter.Valid() {
		return nil, ErrInvalidOrderStatus
	}

	orders, err := s.orderRepo.FindAll(filter)
	if err != nil {
		return nil, apperrors.Upstream(err, "Failed to load orders")
	}
	return orders, nil
}

// UpdateOrderStatus moves an order to status. Entering "delivered" stamps
// deliveredAt once; later changes keep the first stamp.
func (s *orderService) UpdateOrderStatus(orderID, status string) (*model.Order, error) {
	next := model.OrderStatus(status)
	if !next.Valid() {
		logger.Warn("Order status update rejected", map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		})
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.load(orderID)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	order.Status = next
	if next == model.OrderStatusDelivered && order.DeliveredAt == nil {
		now := time.Now()
		order.IsDelivered = true
		order.DeliveredAt = &now
	}

	if err := s.orderRepo.UpdateStatus(order); err != nil {
		return nil, apperrors.Upstream(err, "Failed to update order")
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": order.ID,
		"from":     previous,
		"to":       next,
	})
	return order, nil
}

func (s *orderService) DeleteOrder(orderID string) error {
	if !validID(orderID) {
		return ErrInvalidOrderID
	}

	if err := s.orderRepo.Delete(orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return apperrors.Upstream(err, "Failed to delete order")
	}

	logger.Info("Order deleted", map[string]interface{}{
		"order_id": orderID,
	})
	return nil
}

// GetAnalytics aggregates every order on each call. Revenue counts paid,
// non-cancelled orders only.
func (s *orderService) GetAnalytics() (*OrderAnalytics, error) {
	orders, err := s.orderRepo.FindAll("")
	if err != nil {
		return nil, apperrors.Upstream(err, "Failed to load orders")
	}

	analytics := &OrderAnalytics{
		TotalOrders:    len(orders),
		MonthlyRevenue: []MonthlyRevenue{},
		StatusCounts:   make(map[string]int, len(model.OrderStatuses)),
	}
	for _, status := range model.OrderStatuses {
		analytics.StatusCounts[string(status)] = 0
	}

	total := decimal.Zero
	monthly := make(map[string]decimal.Decimal)
	monthlyOrders := make(map[string]int)

	for _, order := range orders {
		analytics.StatusCounts[string(order.Status)]++
		if !order.IsPaid || order.Status == model.OrderStatusCancelled {
			continue
		}

		amount := decimal.NewFromFloat(order.TotalPrice)
		month := order.CreatedAt.Format("2006-01")
		total = total.Add(amount)
		monthly[month] = monthly[month].Add(amount)
		monthlyOrders[month]++
		analytics.PaidOrders++
	}

	analytics.TotalRevenue = total.Round(2).InexactFloat64()
	if analytics.PaidOrders > 0 {
		analytics.AverageOrderValue = total.Div(decimal.NewFromInt(int64(analytics.PaidOrders))).Round(2).InexactFloat64()
	}

	for month, revenue := range monthly {
		analytics.MonthlyRevenue = append(analytics.MonthlyRevenue, MonthlyRevenue{
			Month:   month,
			Revenue: revenue.Round(2).InexactFloat64(),
			Orders:  monthlyOrders[month],
		})
	}
	sort.Slice(analytics.MonthlyRevenue, func(i, j int) bool {
		return analytics.MonthlyRevenue[i].Month < analytics.MonthlyRevenue[j].Month
	})

	return analytics, nil
}
