package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/elarose/storefront/pkg/db"
	"github.com/elarose/storefront/pkg/db/dbtest"
	"github.com/elarose/storefront/pkg/db/models"
	dbtypes "github.com/elarose/storefront/pkg/db/types"
	"github.com/elarose/storefront/pkg/enums"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/outbox"
	"github.com/elarose/storefront/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(conn),
		DB:     db.NewFromGorm(conn),
		Outbox: outbox.NewService(outbox.NewRepository(conn), nil),
		Now:    func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func seedStockedProduct(t *testing.T, conn *gorm.DB, stock int) uuid.UUID {
	t.Helper()
	category := models.Category{ID: uuid.New(), Slug: "tees-" + uuid.NewString()[:8], Name: "Tees"}
	if err := conn.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	product := models.Product{
		ID:         uuid.New(),
		CategoryID: category.ID,
		Name:       "Tee",
		Price:      decimal.RequireFromString("10.00"),
		Images:     dbtypes.StringList{},
		Sizes:      dbtypes.StringList{},
		Colors:     dbtypes.StringList{},
		Stock:      stock,
		IsActive:   true,
	}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}

func TestGetHidesOtherUsersOrders(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	order := seedOrders(t, conn, "owner", 1)[0]

	if _, err := svc.Get(ctx, Viewer{UserID: "owner"}, order.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := svc.Get(ctx, Viewer{UserID: "admin", IsAdmin: true}, order.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if _, err := svc.Get(ctx, Viewer{UserID: "stranger"}, order.ID); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for stranger, got %v", err)
	}
}

func TestListMineReturnsCursor(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedOrders(t, conn, "user-1", 3)

	list, err := svc.ListMine(ctx, "user-1", pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(list.Orders) != 2 || list.NextCursor == "" {
		t.Fatalf("expected a full page with cursor, got %d orders cursor=%q", len(list.Orders), list.NextCursor)
	}
	if list.Orders[0].ItemCount != 1 {
		t.Fatalf("expected item count 1, got %d", list.Orders[0].ItemCount)
	}
	if _, err := svc.ListMine(ctx, "", pagination.Params{}); pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.ListMine(ctx, "user-1", pagination.Params{Cursor: "%%%"}); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad cursor, got %v", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	admin := Viewer{UserID: "admin-1", IsAdmin: true}
	order := seedOrders(t, conn, "user-1", 1)[0]

	if _, err := svc.UpdateStatus(ctx, Viewer{UserID: "user-1"}, order.ID, enums.OrderStatusConfirmed); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for customer, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, admin, order.ID, enums.OrderStatusDelivered); pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("pending -> delivered must be rejected, got %v", err)
	}

	for _, next := range []enums.OrderStatus{enums.OrderStatusConfirmed, enums.OrderStatusShipped, enums.OrderStatusDelivered} {
		updated, err := svc.UpdateStatus(ctx, admin, order.ID, next)
		if err != nil {
			t.Fatalf("move to %s: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("expected %s, got %s", next, updated.Status)
		}
	}
	if _, err := svc.UpdateStatus(ctx, admin, order.ID, enums.OrderStatusCancelled); pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("delivered order must not be cancelled, got %v", err)
	}

	var events int64
	if err := conn.Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventOrderStatusChanged).Count(&events).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if events != 3 {
		t.Fatalf("expected 3 status events, got %d", events)
	}
}

func TestCancelRestoresStock(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	productID := seedStockedProduct(t, conn, 1)
	order := newOrder("user-1", time.Now().UTC(), productID, 3)
	if err := NewRepository(conn).Create(ctx, order); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, Viewer{UserID: "admin", IsAdmin: true}, order.ID, enums.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	var product models.Product
	if err := conn.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if product.Stock != 4 {
		t.Fatalf("expected stock 4 after cancel, got %d", product.Stock)
	}
}
