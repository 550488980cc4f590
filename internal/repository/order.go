package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository/dao"
)

var (
	ErrOrderNotFound     = dao.ErrOrderNotFound
	ErrActiveOrderExists = dao.ErrActiveOrderExists
)

type OrderDAO interface {
	Insert(ctx context.Context, order dao.Order) (dao.Order, error)
	SetOrderNumber(ctx context.Context, id uint, number string) error
	FindByID(ctx context.Context, id uint) (dao.Order, error)
	FindByNumber(ctx context.Context, number string) (dao.Order, error)
	FindActiveByToken(ctx context.Context, tokenID uint, statuses []string) (dao.Order, error)
	UpdateStatus(ctx context.Context, id uint, from []string, status string, fields map[string]any) (int64, error)
}

type OrderRepository struct {
	dao OrderDAO
}

func NewOrderRepository(dao OrderDAO) *OrderRepository {
	return &OrderRepository{
		dao: dao,
	}
}

// Create inserts the order and assigns its number from prefix and the new id.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order, prefix string) (domain.Order, error) {
	fields, err := json.Marshal(order.DeliveryFields)
	if err != nil {
		return domain.Order{}, fmt.Errorf("json.Marshal -> %w", err)
	}

	created, err := r.dao.Insert(ctx, dao.Order{
		TokenID:           order.TokenID,
		ProductID:         order.ProductID,
		ProductOptionID:   order.ProductOptionID,
		Quantity:          order.Quantity,
		UnitPrice:         order.UnitPrice,
		BasePrice:         order.BasePrice,
		DiscountAmount:    order.DiscountAmount,
		TotalPrice:        order.TotalPrice,
		CouponCode:        order.CouponCode,
		DeliveryMode:      string(order.DeliveryMode),
		Status:            string(order.Status),
		DeliveryFields:    datatypes.JSON(fields),
		DeliveredContent:  order.DeliveredContent,
		OperatorNote:      order.OperatorNote,
		DeviceFingerprint: order.DeviceFingerprint,
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	number := domain.FormatOrderNumber(prefix, created.ID)
	if err = r.dao.SetOrderNumber(ctx, created.ID, number); err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.SetOrderNumber -> %w", err)
	}
	created.OrderNumber = &number

	return r.daoToDomain(created)
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (domain.Order, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found)
}

func (r *OrderRepository) FindByNumber(ctx context.Context, number string) (domain.Order, error) {
	found, err := r.dao.FindByNumber(ctx, number)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindByNumber -> %w", err)
	}

	return r.daoToDomain(found)
}

func (r *OrderRepository) FindActiveByToken(ctx context.Context, tokenID uint) (domain.Order, error) {
	found, err := r.dao.FindActiveByToken(ctx, tokenID, statusStrings(domain.ActiveOrderStatuses))
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindActiveByToken -> %w", err)
	}

	return r.daoToDomain(found)
}

// Transition performs a guarded status update. It reports false when the order
// was not in any of from.
func (r *OrderRepository) Transition(ctx context.Context, id uint, from []domain.OrderStatus, to domain.OrderStatus, patch domain.OrderPatch) (bool, error) {
	fields := map[string]any{}
	if patch.DeliveredContent != nil {
		fields["delivered_content"] = *patch.DeliveredContent
	}
	if patch.OperatorNote != nil {
		fields["operator_note"] = *patch.OperatorNote
	}

	n, err := r.dao.UpdateStatus(ctx, id, statusStrings(from), string(to), fields)
	if err != nil {
		return false, fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return n == 1, nil
}

func statusStrings(statuses []domain.OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}

	return out
}

func (r *OrderRepository) daoToDomain(o dao.Order) (domain.Order, error) {
	var fields domain.DeliveryFields
	if len(o.DeliveryFields) > 0 {
		if err := json.Unmarshal(o.DeliveryFields, &fields); err != nil {
			return domain.Order{}, fmt.Errorf("json.Unmarshal -> %w", err)
		}
	}

	var number string
	if o.OrderNumber != nil {
		number = *o.OrderNumber
	}

	return domain.Order{
		ID:                o.ID,
		OrderNumber:       number,
		TokenID:           o.TokenID,
		ProductID:         o.ProductID,
		ProductOptionID:   o.ProductOptionID,
		Quantity:          o.Quantity,
		UnitPrice:         domain.RoundMoney(o.UnitPrice),
		BasePrice:         domain.RoundMoney(o.BasePrice),
		DiscountAmount:    domain.RoundMoney(o.DiscountAmount),
		TotalPrice:        domain.RoundMoney(o.TotalPrice),
		CouponCode:        o.CouponCode,
		DeliveryMode:      domain.DeliveryMode(o.DeliveryMode),
		Status:            domain.OrderStatus(o.Status),
		DeliveryFields:    fields,
		DeliveredContent:  o.DeliveredContent,
		OperatorNote:      o.OperatorNote,
		DeviceFingerprint: o.DeviceFingerprint,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}, nil
}
