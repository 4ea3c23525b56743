package reconcile

import "strings"

// Order is the typed payload of an ERP order.
type Order struct {
	Number             string
	ClientName         string
	ClientCNPJ         string
	ProductCode        string
	ProductDescription string
	ProductFamily      string
}

// Record converts the order into a SourceRecord.
func (o Order) Record() SourceRecord {
	return SourceRecord{
		Kind: KindOrder,
		Key:  strings.TrimSpace(o.Number),
		Fields: Fields{
			FieldOrderNumber:        strings.TrimSpace(o.Number),
			FieldClientName:         strings.TrimSpace(o.ClientName),
			FieldClientCNPJ:         strings.TrimSpace(o.ClientCNPJ),
			FieldProductCode:        strings.TrimSpace(o.ProductCode),
			FieldProductDescription: strings.TrimSpace(o.ProductDescription),
			FieldProductFamily:      strings.TrimSpace(o.ProductFamily),
		},
	}
}

// OrderFrom reads an Order back out of record fields.
func OrderFrom(f Fields) Order {
	return Order{
		Number:             f.Get(FieldOrderNumber),
		ClientName:         f.Get(FieldClientName),
		ClientCNPJ:         f.Get(FieldClientCNPJ),
		ProductCode:        f.Get(FieldProductCode),
		ProductDescription: f.Get(FieldProductDescription),
		ProductFamily:      f.Get(FieldProductFamily),
	}
}

// Customer is the typed payload of an ERP client.
type Customer struct {
	Name string
	CNPJ string
}

// Record converts the customer into a SourceRecord.
func (c Customer) Record() SourceRecord {
	return SourceRecord{
		Kind: KindCustomer,
		Key:  strings.TrimSpace(c.Name),
		Fields: Fields{
			FieldName: strings.TrimSpace(c.Name),
			FieldCNPJ: strings.TrimSpace(c.CNPJ),
		},
	}
}

// CustomerFrom reads a Customer back out of record fields.
func CustomerFrom(f Fields) Customer {
	return Customer{Name: f.Get(FieldName), CNPJ: f.Get(FieldCNPJ)}
}

// Product is the typed payload of an ERP product (a local product type).
type Product struct {
	Code        string
	Description string
	Family      string
}

// Record converts the product into a SourceRecord.
func (p Product) Record() SourceRecord {
	return SourceRecord{
		Kind: KindProduct,
		Key:  strings.TrimSpace(p.Code),
		Fields: Fields{
			FieldCode:        strings.TrimSpace(p.Code),
			FieldDescription: strings.TrimSpace(p.Description),
			FieldFamily:      strings.TrimSpace(p.Family),
		},
	}
}

// ProductFrom reads a Product back out of record fields.
func ProductFrom(f Fields) Product {
	return Product{
		Code:        f.Get(FieldCode),
		Description: f.Get(FieldDescription),
		Family:      f.Get(FieldFamily),
	}
}
