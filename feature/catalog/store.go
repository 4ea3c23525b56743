package catalog

import (
	"context"
	"errors"
	"fmt"

	"device-manager/core/database"
	"device-manager/core/reconcile"
	"device-manager/feature/catalog/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Store persists ERP records into the local catalog tables.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the catalog tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Customer{}, &models.ProductType{}, &models.ProductOrder{})
}

// VerifySchema checks that every column the store uses exists.
func VerifySchema(db *gorm.DB) error {
	for _, table := range []string{"customers", "product_types", "product_orders"} {
		missing, err := database.MissingColumns(db, table, models.RequiredColumns[table])
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", table, err)
		}
		if len(missing) > 0 {
			return fmt.Errorf("table %s is missing columns %v", table, missing)
		}
	}
	return nil
}

// FindAll implements reconcile.Store.
func (s *Store) FindAll(ctx context.Context, kind reconcile.RecordKind) ([]reconcile.LocalRecord, error) {
	db := s.db.WithContext(ctx)

	switch kind {
	case reconcile.KindCustomer:
		var rows []models.Customer
		if err := db.Order("id").Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]reconcile.LocalRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, customerRecord(r))
		}
		return out, nil

	case reconcile.KindProduct:
		var rows []models.ProductType
		if err := db.Order("id").Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]reconcile.LocalRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, productRecord(r))
		}
		return out, nil

	case reconcile.KindOrder:
		var rows []models.ProductOrder
		if err := db.Preload("Customer").Preload("ProductType").Order("id").Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]reconcile.LocalRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, orderRecord(r))
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %q", reconcile.ErrUnknownKind, kind)
}

// FindByKey implements reconcile.Store. A missing key returns nil, nil.
func (s *Store) FindByKey(ctx context.Context, kind reconcile.RecordKind, key string) (*reconcile.LocalRecord, error) {
	db := s.db.WithContext(ctx)
	var rec reconcile.LocalRecord

	switch kind {
	case reconcile.KindCustomer:
		var row models.Customer
		if err := db.Where("name = ?", key).First(&row).Error; err != nil {
			return notFoundAsNil(err)
		}
		rec = customerRecord(row)

	case reconcile.KindProduct:
		var row models.ProductType
		if err := db.Where("name = ?", key).First(&row).Error; err != nil {
			return notFoundAsNil(err)
		}
		rec = productRecord(row)

	case reconcile.KindOrder:
		var row models.ProductOrder
		if err := db.Preload("Customer").Preload("ProductType").Where("order_number = ?", key).First(&row).Error; err != nil {
			return notFoundAsNil(err)
		}
		rec = orderRecord(row)

	default:
		return nil, fmt.Errorf("%w: %q", reconcile.ErrUnknownKind, kind)
	}

	return &rec, nil
}

// Insert implements reconcile.Store. An order insert find-or-creates its
// customer and product type in the same transaction.
func (s *Store) Insert(ctx context.Context, kind reconcile.RecordKind, rec reconcile.SourceRecord) (uint, error) {
	db := s.db.WithContext(ctx)

	switch kind {
	case reconcile.KindCustomer:
		c := reconcile.CustomerFrom(rec.Fields)
		row := models.Customer{Name: c.Name, CNPJ: c.CNPJ}
		if err := db.Create(&row).Error; err != nil {
			return 0, err
		}
		return row.ID, nil

	case reconcile.KindProduct:
		p := reconcile.ProductFrom(rec.Fields)
		row := models.ProductType{Name: p.Code, Description: p.Description, Family: p.Family}
		if err := db.Create(&row).Error; err != nil {
			return 0, err
		}
		return row.ID, nil

	case reconcile.KindOrder:
		o := reconcile.OrderFrom(rec.Fields)
		row := models.ProductOrder{OrderNumber: o.Number}
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			if row.CustomerID, err = ensureCustomer(tx, o.ClientName, o.ClientCNPJ); err != nil {
				return err
			}
			if row.ProductTypeID, err = ensureProductType(tx, o.ProductCode, o.ProductDescription, o.ProductFamily); err != nil {
				return err
			}
			return tx.Create(&row).Error
		})
		if err != nil {
			return 0, err
		}
		return row.ID, nil
	}

	return 0, fmt.Errorf("%w: %q", reconcile.ErrUnknownKind, kind)
}

// Update implements reconcile.Store. Only the given fields are written; for
// orders a changed client or product re-points the relation and leaves the
// assembly status untouched.
func (s *Store) Update(ctx context.Context, kind reconcile.RecordKind, id uint, fields reconcile.Fields) error {
	db := s.db.WithContext(ctx)

	switch kind {
	case reconcile.KindCustomer:
		return updateColumns(db, &models.Customer{}, id, columnsFor(fields, map[reconcile.Field]string{
			reconcile.FieldCNPJ: "cnpj",
		}))

	case reconcile.KindProduct:
		return updateColumns(db, &models.ProductType{}, id, columnsFor(fields, map[reconcile.Field]string{
			reconcile.FieldDescription: "description",
			reconcile.FieldFamily:      "family",
		}))

	case reconcile.KindOrder:
		return db.Transaction(func(tx *gorm.DB) error {
			updates := map[string]any{}
			if name, ok := fields[reconcile.FieldClientName]; ok {
				cid, err := ensureCustomer(tx, name, fields.Get(reconcile.FieldClientCNPJ))
				if err != nil {
					return err
				}
				updates["customer_id"] = cid
			}
			if code, ok := fields[reconcile.FieldProductCode]; ok {
				pid, err := ensureProductType(tx, code, fields.Get(reconcile.FieldProductDescription), fields.Get(reconcile.FieldProductFamily))
				if err != nil {
					return err
				}
				updates["product_type_id"] = pid
			}
			return updateColumns(tx, &models.ProductOrder{}, id, updates)
		})
	}

	return fmt.Errorf("%w: %q", reconcile.ErrUnknownKind, kind)
}

func updateColumns(db *gorm.DB, model any, id uint, updates map[string]any) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if len(updates) == 0 {
		return nil
	}
	return db.Model(model).Where("id = ?", id).Updates(updates).Error
}

func columnsFor(fields reconcile.Fields, columns map[reconcile.Field]string) map[string]any {
	updates := make(map[string]any, len(fields))
	for f, v := range fields {
		if col, ok := columns[f]; ok {
			updates[col] = v
		}
	}
	return updates
}

// ensureCustomer returns the id of the customer named name, creating it when
// absent. An existing customer with no CNPJ takes cnpj. An empty name yields a
// nil id.
func ensureCustomer(tx *gorm.DB, name, cnpj string) (*uint, error) {
	if name == "" {
		return nil, nil
	}
	row := models.Customer{Name: name, CNPJ: cnpj}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		if err := tx.Where("name = ?", name).First(&row).Error; err != nil {
			return nil, err
		}
		if err := fillEmpty(tx, &models.Customer{}, row.ID, map[string]string{"cnpj": cnpj}); err != nil {
			return nil, err
		}
	}
	return &row.ID, nil
}

// ensureProductType returns the id of the product type with code, creating it
// when absent. An existing product type takes description and family where its
// own are empty. An empty code yields a nil id.
func ensureProductType(tx *gorm.DB, code, description, family string) (*uint, error) {
	if code == "" {
		return nil, nil
	}
	row := models.ProductType{Name: code, Description: description, Family: family}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		if err := tx.Where("name = ?", code).First(&row).Error; err != nil {
			return nil, err
		}
		if err := fillEmpty(tx, &models.ProductType{}, row.ID, map[string]string{
			"description": description,
			"family":      family,
		}); err != nil {
			return nil, err
		}
	}
	return &row.ID, nil
}

// fillEmpty sets each column to its value where the stored column is empty.
// Empty values are skipped.
func fillEmpty(tx *gorm.DB, model any, id uint, values map[string]string) error {
	for col, v := range values {
		if v == "" {
			continue
		}
		cond := fmt.Sprintf("id = ? AND (%s = '' OR %s IS NULL)", col, col)
		if err := tx.Model(model).Where(cond, id).Update(col, v).Error; err != nil {
			return err
		}
	}
	return nil
}

func notFoundAsNil(err error) (*reconcile.LocalRecord, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

func customerRecord(r models.Customer) reconcile.LocalRecord {
	src := reconcile.Customer{Name: r.Name, CNPJ: r.CNPJ}.Record()
	return reconcile.LocalRecord{ID: r.ID, Key: src.Key, Fields: src.Fields}
}

func productRecord(r models.ProductType) reconcile.LocalRecord {
	src := reconcile.Product{Code: r.Name, Description: r.Description, Family: r.Family}.Record()
	return reconcile.LocalRecord{ID: r.ID, Key: src.Key, Fields: src.Fields}
}

func orderRecord(r models.ProductOrder) reconcile.LocalRecord {
	o := reconcile.Order{Number: r.OrderNumber}
	if r.Customer != nil {
		o.ClientName = r.Customer.Name
		o.ClientCNPJ = r.Customer.CNPJ
	}
	if r.ProductType != nil {
		o.ProductCode = r.ProductType.Name
		o.ProductDescription = r.ProductType.Description
		o.ProductFamily = r.ProductType.Family
	}
	src := o.Record()
	return reconcile.LocalRecord{ID: r.ID, Key: src.Key, Fields: src.Fields}
}
