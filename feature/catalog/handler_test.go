package catalog

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"device-manager/core/reconcile"
	"device-manager/feature/catalog/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, uint) {
	t.Helper()
	db := newTestDB(t)

	id, err := NewStore(db).Insert(t.Context(), reconcile.KindOrder, orderRecord1042())
	require.NoError(t, err)

	feature := NewFeature(db, zap.NewNop())
	feature.service.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	require.True(t, feature.IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app, db, id
}

func doRequest(t *testing.T, app *fiber.App, method, path string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestHandler_ListAndGet(t *testing.T) {
	app, _, id := newTestApp(t)

	status, body := doRequest(t, app, "GET", "/customers")
	assert.Equal(t, fiber.StatusOK, status)
	var customers []models.Customer
	require.NoError(t, json.Unmarshal(body, &customers))
	require.Len(t, customers, 1)
	assert.Equal(t, "ACME LTDA", customers[0].Name)

	status, body = doRequest(t, app, "GET", "/product-types/1")
	assert.Equal(t, fiber.StatusOK, status)
	var pt models.ProductType
	require.NoError(t, json.Unmarshal(body, &pt))
	assert.Equal(t, "RDR-01", pt.Name)

	status, body = doRequest(t, app, "GET", "/orders/1")
	assert.Equal(t, fiber.StatusOK, status)
	var order models.ProductOrder
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, id, order.ID)
	require.NotNil(t, order.Customer)
	assert.Equal(t, "ACME LTDA", order.Customer.Name)
}

func TestHandler_ListOrdersFilter(t *testing.T) {
	app, _, _ := newTestApp(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCount  int
	}{
		{"All", "/orders", fiber.StatusOK, 1},
		{"ByCustomer", "/orders?customer_id=1", fiber.StatusOK, 1},
		{"OtherCustomer", "/orders?customer_id=2", fiber.StatusOK, 0},
		{"ByProductType", "/orders?product_type_id=1", fiber.StatusOK, 1},
		{"InvalidFilter", "/orders?customer_id=abc", fiber.StatusBadRequest, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, "GET", tt.path)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantCount < 0 {
				return
			}
			var orders []models.ProductOrder
			require.NoError(t, json.Unmarshal(body, &orders))
			assert.Len(t, orders, tt.wantCount)
		})
	}
}

func TestHandler_ListOrdersByCreatedDate(t *testing.T) {
	app, db, id := newTestApp(t)

	later, err := NewStore(db).Insert(t.Context(), reconcile.KindOrder, reconcile.Order{Number: "1043", ClientName: "ACME LTDA", ProductCode: "RDR-01"}.Record())
	require.NoError(t, err)

	setCreated := func(id uint, at time.Time) {
		require.NoError(t, db.Model(&models.ProductOrder{}).Where("id = ?", id).UpdateColumn("created_at", at).Error)
	}
	setCreated(id, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	setCreated(later, time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC))

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantOrders []string
	}{
		{"DayRange", "created_from=2026-03-01&created_to=2026-03-02", fiber.StatusOK, []string{"1042"}},
		{"FromOnly", "created_from=2026-03-03", fiber.StatusOK, []string{"1043"}},
		{"ToCoversWholeDay", "created_to=2026-03-05", fiber.StatusOK, []string{"1042", "1043"}},
		{"Timestamp", "created_from=2026-03-02T10:00:00Z", fiber.StatusOK, []string{"1043"}},
		{"TimestampWithOffset", "created_to=2026-03-02T07:00:00-03:00", fiber.StatusOK, []string{"1042"}},
		{"Empty", "created_from=2026-03-06", fiber.StatusOK, []string{}},
		{"WithCustomer", "customer_id=1&created_from=2026-03-05", fiber.StatusOK, []string{"1043"}},
		{"InvalidDate", "created_from=yesterday", fiber.StatusBadRequest, nil},
		{"Reversed", "created_from=2026-03-05&created_to=2026-03-01", fiber.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, "GET", "/orders?"+tt.query)
			require.Equal(t, tt.wantStatus, status, string(body))
			if tt.wantOrders == nil {
				return
			}
			var orders []models.ProductOrder
			require.NoError(t, json.Unmarshal(body, &orders))
			numbers := []string{}
			for _, o := range orders {
				numbers = append(numbers, o.OrderNumber)
			}
			assert.Equal(t, tt.wantOrders, numbers)
		})
	}
}

func TestHandler_ProductTypeLifecycle(t *testing.T) {
	app, db, _ := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/product-types", `{"name":" CTL-02 ","description":"Controller","family":"Controllers"}`)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var created models.ProductType
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "CTL-02", created.Name)
	assert.Equal(t, "Controllers", created.Family)

	status, body = doJSON(t, app, "POST", "/product-types", `{"name":"CTL-02"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "already exists")

	status, _ = doJSON(t, app, "POST", "/product-types", `{"description":"no name"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "POST", "/product-types", `{"name":`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	path := "/product-types/" + strconv.FormatUint(uint64(created.ID), 10)
	status, body = doJSON(t, app, "PUT", path, `{"name":"CTL-03","description":"Controller v3"}`)
	require.Equal(t, fiber.StatusOK, status, string(body))
	var updated models.ProductType
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "CTL-03", updated.Name)
	assert.Equal(t, "Controller v3", updated.Description)
	assert.Empty(t, updated.Family)

	status, _ = doJSON(t, app, "PUT", path, `{"name":"RDR-01"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "PUT", "/product-types/99", `{"name":"X"}`)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = doRequest(t, app, "DELETE", "/product-types/1")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "still referenced")

	status, _ = doRequest(t, app, "DELETE", path)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = doRequest(t, app, "DELETE", path)
	assert.Equal(t, fiber.StatusNotFound, status)

	var count int64
	db.Model(&models.ProductType{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestHandler_AddAndDeleteOrder(t *testing.T) {
	app, db, _ := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/orders", `{"order_number":"2001","customer_id":1,"product_type_id":1,"version":"v1.0.0"}`)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var order models.ProductOrder
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, "2001", order.OrderNumber)
	assert.Equal(t, "v1.0.0", order.Version)
	require.NotNil(t, order.ProductType)
	assert.Equal(t, "RDR-01", order.ProductType.Name)
	assert.False(t, order.Mounted)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"Duplicate", `{"order_number":"2001"}`, "already exists"},
		{"MissingNumber", `{"customer_id":1}`, "order_number is required"},
		{"UnknownCustomer", `{"order_number":"2002","customer_id":99}`, "customer 99 does not exist"},
		{"UnknownProductType", `{"order_number":"2002","product_type_id":99}`, "product type 99 does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, "POST", "/orders", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Contains(t, string(body), tt.want)
		})
	}

	path := "/orders/" + strconv.FormatUint(uint64(order.ID), 10)
	status, _ = doRequest(t, app, "DELETE", path)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = doRequest(t, app, "DELETE", path)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doRequest(t, app, "DELETE", "/orders/abc")
	assert.Equal(t, fiber.StatusBadRequest, status)

	var count int64
	db.Model(&models.ProductOrder{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestHandler_NotFoundAndInvalidID(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, _ := doRequest(t, app, "GET", "/customers/42")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doRequest(t, app, "GET", "/orders/abc")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandler_SetOrderStatus(t *testing.T) {
	app, db, id := newTestApp(t)

	status, body := doRequest(t, app, "PUT", "/orders/1/mount")
	require.Equal(t, fiber.StatusOK, status, string(body))

	var order models.ProductOrder
	require.NoError(t, db.First(&order, id).Error)
	assert.True(t, order.Mounted)
	require.NotNil(t, order.MountedAt)
	assert.True(t, order.MountedAt.Equal(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)))
	assert.False(t, order.Tested)

	status, body = doRequest(t, app, "PUT", "/orders/1/mount")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "status already set")

	status, _ = doRequest(t, app, "PUT", "/orders/1/paint")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doRequest(t, app, "PUT", "/orders/9/ship")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestFeature_DisabledWithoutDatabase(t *testing.T) {
	f := NewFeature(nil, zap.NewNop())
	assert.False(t, f.IsEnabled())
	assert.Equal(t, "catalog", f.Name())
}
