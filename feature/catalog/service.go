package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"device-manager/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrInvalidStatus is returned for an unknown assembly step.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrStatusAlreadySet is returned when the order already completed the step.
	ErrStatusAlreadySet = errors.New("status already set")
	// ErrAlreadyExists is returned when a natural key is already taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInUse is returned when deleting a row other rows still reference.
	ErrInUse = errors.New("still referenced")
	// ErrInvalidInput is returned for a missing or malformed field.
	ErrInvalidInput = errors.New("invalid input")
)

// Service serves catalog reads, manual edits and order status changes.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new catalog service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger, now: time.Now}
}

// ListCustomers returns all customers ordered by id.
func (s *Service) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var rows []models.Customer
	err := s.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

// GetCustomer returns one customer.
func (s *Service) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var row models.Customer
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, notFound(err, "customer", id)
	}
	return &row, nil
}

// ListProductTypes returns all product types ordered by id.
func (s *Service) ListProductTypes(ctx context.Context) ([]models.ProductType, error) {
	var rows []models.ProductType
	err := s.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

// GetProductType returns one product type.
func (s *Service) GetProductType(ctx context.Context, id uint) (*models.ProductType, error) {
	var row models.ProductType
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, notFound(err, "product type", id)
	}
	return &row, nil
}

// CreateProductType adds a product type. The name is the ERP product code and
// must be unique.
func (s *Service) CreateProductType(ctx context.Context, in models.ProductTypeInput) (*models.ProductType, error) {
	in = trimProductType(in)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	row := models.ProductType{Name: in.Name, Description: in.Description, Family: in.Family}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := nameFree(tx, &models.ProductType{}, in.Name, 0); err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product type created", zap.Uint("product_type_id", row.ID), zap.String("name", row.Name))
	return &row, nil
}

// UpdateProductType replaces the name, description and family of a product type.
func (s *Service) UpdateProductType(ctx context.Context, id uint, in models.ProductTypeInput) (*models.ProductType, error) {
	in = trimProductType(in)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	var row models.ProductType
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			return notFound(err, "product type", id)
		}
		if err := nameFree(tx, &models.ProductType{}, in.Name, id); err != nil {
			return err
		}
		return tx.Model(&row).Updates(map[string]any{
			"name":        in.Name,
			"description": in.Description,
			"family":      in.Family,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product type updated", zap.Uint("product_type_id", id), zap.String("name", in.Name))
	return s.GetProductType(ctx, id)
}

// DeleteProductType removes a product type no order references.
func (s *Service) DeleteProductType(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.ProductType
		if err := tx.First(&row, id).Error; err != nil {
			return notFound(err, "product type", id)
		}
		var orders int64
		if err := tx.Model(&models.ProductOrder{}).Where("product_type_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return fmt.Errorf("%w: product type %s has %d orders", ErrInUse, row.Name, orders)
		}
		return tx.Delete(&row).Error
	})
	if err != nil {
		return err
	}

	s.logger.Info("Product type deleted", zap.Uint("product_type_id", id))
	return nil
}

// ListOrders returns the orders matching filter with their relations loaded.
func (s *Service) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.ProductOrder, error) {
	q := s.db.WithContext(ctx).Preload("Customer").Preload("ProductType").Order("id")
	if filter.CustomerID != 0 {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.ProductTypeID != 0 {
		q = q.Where("product_type_id = ?", filter.ProductTypeID)
	}
	if !filter.CreatedFrom.IsZero() {
		q = q.Where("created_at >= ?", filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		q = q.Where("created_at <= ?", filter.CreatedTo)
	}

	var rows []models.ProductOrder
	err := q.Find(&rows).Error
	return rows, err
}

// GetOrder returns one order with its relations loaded.
func (s *Service) GetOrder(ctx context.Context, id uint) (*models.ProductOrder, error) {
	var row models.ProductOrder
	if err := s.db.WithContext(ctx).Preload("Customer").Preload("ProductType").First(&row, id).Error; err != nil {
		return nil, notFound(err, "order", id)
	}
	return &row, nil
}

// AddOrder creates an order outside of ERP sync. Referenced customer and
// product type must exist.
func (s *Service) AddOrder(ctx context.Context, in models.OrderInput) (*models.ProductOrder, error) {
	in.OrderNumber = strings.TrimSpace(in.OrderNumber)
	if in.OrderNumber == "" {
		return nil, fmt.Errorf("%w: order_number is required", ErrInvalidInput)
	}

	row := models.ProductOrder{
		OrderNumber:   in.OrderNumber,
		CustomerID:    in.CustomerID,
		ProductTypeID: in.ProductTypeID,
		Version:       strings.TrimSpace(in.Version),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ProductOrder{}).Where("order_number = ?", row.OrderNumber).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: order %s", ErrAlreadyExists, row.OrderNumber)
		}
		if err := mustExist(tx, &models.Customer{}, "customer", row.CustomerID); err != nil {
			return err
		}
		if err := mustExist(tx, &models.ProductType{}, "product type", row.ProductTypeID); err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order created", zap.Uint("order_id", row.ID), zap.String("order_number", row.OrderNumber))
	return s.GetOrder(ctx, row.ID)
}

// DeleteOrder removes an order.
func (s *Service) DeleteOrder(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.ProductOrder{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order %d", ErrNotFound, id)
	}

	s.logger.Info("Order deleted", zap.Uint("order_id", id))
	return nil
}

// SetOrderStatus marks the order as having completed step and stamps the time.
func (s *Service) SetOrderStatus(ctx context.Context, id uint, step models.Status) (*models.ProductOrder, error) {
	flag, at, ok := step.Column()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, step)
	}

	var row models.ProductOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			return notFound(err, "order", id)
		}
		if row.Done(step) {
			return fmt.Errorf("%w: order %s %s", ErrStatusAlreadySet, row.OrderNumber, step)
		}
		return tx.Model(&row).Updates(map[string]any{flag: true, at: s.now()}).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status changed",
		zap.Uint("order_id", id),
		zap.String("order_number", row.OrderNumber),
		zap.String("status", string(step)),
	)
	return s.GetOrder(ctx, id)
}

func trimProductType(in models.ProductTypeInput) models.ProductTypeInput {
	return models.ProductTypeInput{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Family:      strings.TrimSpace(in.Family),
	}
}

// nameFree fails with ErrAlreadyExists when another row than id uses name.
func nameFree(tx *gorm.DB, model any, name string, id uint) error {
	var count int64
	if err := tx.Model(model).Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}
	return nil
}

func mustExist(tx *gorm.DB, model any, what string, id *uint) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := tx.Model(model).Where("id = ?", *id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s %d does not exist", ErrInvalidInput, what, *id)
	}
	return nil
}

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return err
}
