package omie

import (
	"context"
	"fmt"

	"device-manager/core/reconcile"
	"device-manager/core/utils"
)

// Lister is the part of Client used by Source.
type Lister interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListOrders(ctx context.Context) ([]Order, error)
}

// Source maps Omie listings to reconcile source records.
type Source struct {
	client Lister
}

// NewSource creates a reconcile.Source backed by client.
func NewSource(client Lister) *Source {
	return &Source{client: client}
}

// Fetch implements reconcile.Source.
func (s *Source) Fetch(ctx context.Context, kind reconcile.RecordKind) ([]reconcile.SourceRecord, error) {
	switch kind {
	case reconcile.KindCustomer:
		return s.customers(ctx)
	case reconcile.KindProduct:
		return s.products(ctx)
	case reconcile.KindOrder:
		return s.orders(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", reconcile.ErrUnknownKind, kind)
	}
}

func (s *Source) customers(ctx context.Context) ([]reconcile.SourceRecord, error) {
	customers, err := s.client.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]reconcile.SourceRecord, 0, len(customers))
	for _, c := range customers {
		out = append(out, reconcile.Customer{Name: customerName(c), CNPJ: c.Document}.Record())
	}
	return out, nil
}

func (s *Source) products(ctx context.Context) ([]reconcile.SourceRecord, error) {
	products, err := s.client.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]reconcile.SourceRecord, 0, len(products))
	for _, p := range products {
		out = append(out, reconcile.Product{Code: p.Code, Description: p.Description, Family: p.Family}.Record())
	}
	return out, nil
}

// orders flattens each order to its customer and first line item. Cancelled
// orders are left out.
func (s *Source) orders(ctx context.Context) ([]reconcile.SourceRecord, error) {
	orders, err := s.client.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.client.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.client.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]Customer, len(customers))
	for _, c := range customers {
		byCode[utils.ToString(c.Code)] = c
	}
	productByCode := make(map[string]Product, len(products))
	for _, p := range products {
		productByCode[p.Code] = p
	}

	out := make([]reconcile.SourceRecord, 0, len(orders))
	for _, o := range orders {
		if utils.ToBool(o.Register.Cancelled) {
			continue
		}

		rec := reconcile.Order{Number: utils.ToString(o.Header.Number)}
		if c, ok := byCode[utils.ToString(o.Header.CustomerCode)]; ok {
			rec.ClientName = customerName(c)
			rec.ClientCNPJ = c.Document
		}
		if len(o.Items) > 0 {
			item := o.Items[0].Product
			rec.ProductCode = item.Code
			rec.ProductDescription = item.Description
			if p, ok := productByCode[item.Code]; ok {
				rec.ProductFamily = p.Family
				if rec.ProductDescription == "" {
					rec.ProductDescription = p.Description
				}
			}
		}
		out = append(out, rec.Record())
	}
	return out, nil
}

func customerName(c Customer) string {
	if name := utils.ToString(c.CompanyName); name != "" {
		return name
	}
	return utils.ToString(c.TradeName)
}
