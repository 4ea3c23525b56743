package models

import "time"

// Customer is a client company known to the ERP.
type Customer struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;size:255;uniqueIndex;not null" json:"name"`
	CNPJ      string    `gorm:"column:cnpj;size:32" json:"cnpj"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (Customer) TableName() string {
	return "customers"
}

// ProductType is a sellable product. Name holds the ERP product code.
type ProductType struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;size:128;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"column:description;size:512" json:"description"`
	Family      string    `gorm:"column:family;size:255" json:"family"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (ProductType) TableName() string {
	return "product_types"
}

// ProductOrder is a sales order for one device, tracked through assembly.
type ProductOrder struct {
	ID            uint         `gorm:"column:id;primaryKey" json:"id"`
	OrderNumber   string       `gorm:"column:order_number;size:64;uniqueIndex;not null" json:"order_number"`
	CustomerID    *uint        `gorm:"column:customer_id;index" json:"customer_id"`
	Customer      *Customer    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ProductTypeID *uint        `gorm:"column:product_type_id;index" json:"product_type_id"`
	ProductType   *ProductType `gorm:"foreignKey:ProductTypeID" json:"product_type,omitempty"`
	Version       string       `gorm:"column:version;size:64" json:"version"`
	Mounted       bool         `gorm:"column:mounted;not null;default:false" json:"mounted"`
	MountedAt     *time.Time   `gorm:"column:mounted_at" json:"mounted_at,omitempty"`
	Tested        bool         `gorm:"column:tested;not null;default:false" json:"tested"`
	TestedAt      *time.Time   `gorm:"column:tested_at" json:"tested_at,omitempty"`
	Shipped       bool         `gorm:"column:shipped;not null;default:false" json:"shipped"`
	ShippedAt     *time.Time   `gorm:"column:shipped_at" json:"shipped_at,omitempty"`
	Activated     bool         `gorm:"column:activated;not null;default:false" json:"activated"`
	ActivatedAt   *time.Time   `gorm:"column:activated_at" json:"activated_at,omitempty"`
	CreatedAt     time.Time    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (ProductOrder) TableName() string {
	return "product_orders"
}

// OrderFilter narrows order listings. Zero values match everything.
// CreatedFrom and CreatedTo bound created_at, both inclusive.
type OrderFilter struct {
	CustomerID    uint
	ProductTypeID uint
	CreatedFrom   time.Time
	CreatedTo     time.Time
}

// ProductTypeInput is the writable part of a product type.
type ProductTypeInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Family      string `json:"family"`
}

// OrderInput is the body of a manually created order.
type OrderInput struct {
	OrderNumber   string `json:"order_number"`
	CustomerID    *uint  `json:"customer_id"`
	ProductTypeID *uint  `json:"product_type_id"`
	Version       string `json:"version"`
}

// Status is an assembly step of a product order.
type Status string

const (
	StatusMount    Status = "mount"
	StatusTest     Status = "test"
	StatusShip     Status = "ship"
	StatusActivate Status = "activate"
)

// Column returns the flag and timestamp columns of the step.
func (s Status) Column() (flag, at string, ok bool) {
	switch s {
	case StatusMount:
		return "mounted", "mounted_at", true
	case StatusTest:
		return "tested", "tested_at", true
	case StatusShip:
		return "shipped", "shipped_at", true
	case StatusActivate:
		return "activated", "activated_at", true
	default:
		return "", "", false
	}
}

// Done reports whether the order has completed step s.
func (o ProductOrder) Done(s Status) bool {
	switch s {
	case StatusMount:
		return o.Mounted
	case StatusTest:
		return o.Tested
	case StatusShip:
		return o.Shipped
	case StatusActivate:
		return o.Activated
	default:
		return false
	}
}

// RequiredColumns lists the columns the store reads and writes, per table.
var RequiredColumns = map[string][]string{
	"customers":      {"id", "name", "cnpj"},
	"product_types":  {"id", "name", "description", "family"},
	"product_orders": {"id", "order_number", "customer_id", "product_type_id", "mounted", "tested", "shipped", "activated"},
}
