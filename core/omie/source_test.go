package omie

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"device-manager/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	customers []Customer
	products  []Product
	orders    []Order
	err       error
}

func (f *fakeLister) ListCustomers(ctx context.Context) ([]Customer, error) { return f.customers, f.err }
func (f *fakeLister) ListProducts(ctx context.Context) ([]Product, error)   { return f.products, f.err }
func (f *fakeLister) ListOrders(ctx context.Context) ([]Order, error)       { return f.orders, f.err }

func orderWith(number any, customer any, code, desc string) Order {
	o := Order{Header: OrderHeader{Number: number, CustomerCode: customer}}
	item := OrderItem{}
	item.Product.Code = code
	item.Product.Description = desc
	o.Items = []OrderItem{item}
	return o
}

func TestSource_Orders(t *testing.T) {
	lister := &fakeLister{
		customers: []Customer{{Code: json.Number("10"), CompanyName: "ACME LTDA", Document: "11.222.333/0001-44"}},
		products:  []Product{{Code: "RDR-01", Description: "Reader", Family: "Readers"}},
		orders: []Order{
			orderWith("1042", json.Number("10"), "RDR-01", ""),
			orderWith(json.Number("1043"), json.Number("99"), "ANT-02", "Antenna"),
			{Header: OrderHeader{Number: "1044"}, Register: OrderRegister{Cancelled: "S"}},
		},
	}

	records, err := NewSource(lister).Fetch(context.Background(), reconcile.KindOrder)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := reconcile.OrderFrom(records[0].Fields)
	assert.Equal(t, "1042", records[0].Key)
	assert.Equal(t, "ACME LTDA", first.ClientName)
	assert.Equal(t, "11.222.333/0001-44", first.ClientCNPJ)
	assert.Equal(t, "RDR-01", first.ProductCode)
	assert.Equal(t, "Reader", first.ProductDescription)
	assert.Equal(t, "Readers", first.ProductFamily)

	second := reconcile.OrderFrom(records[1].Fields)
	assert.Equal(t, "1043", records[1].Key)
	assert.Empty(t, second.ClientName)
	assert.Equal(t, "Antenna", second.ProductDescription)
	assert.Empty(t, second.ProductFamily)
}

func TestSource_CustomersAndProducts(t *testing.T) {
	lister := &fakeLister{
		customers: []Customer{{CompanyName: " ACME ", Document: "1"}, {TradeName: "Initech"}},
		products:  []Product{{Code: "P1", Description: "A", Family: "F"}},
	}
	src := NewSource(lister)

	customers, err := src.Fetch(context.Background(), reconcile.KindCustomer)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "ACME", customers[0].Key)
	assert.Equal(t, "Initech", customers[1].Key)

	products, err := src.Fetch(context.Background(), reconcile.KindProduct)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, reconcile.Fields{
		reconcile.FieldCode:        "P1",
		reconcile.FieldDescription: "A",
		reconcile.FieldFamily:      "F",
	}, products[0].Fields)
}

func TestSource_Errors(t *testing.T) {
	src := NewSource(&fakeLister{err: errors.New("timeout")})

	_, err := src.Fetch(context.Background(), reconcile.KindOrder)
	assert.ErrorContains(t, err, "timeout")

	_, err = src.Fetch(context.Background(), reconcile.RecordKind("readers"))
	assert.ErrorIs(t, err, reconcile.ErrUnknownKind)
}
