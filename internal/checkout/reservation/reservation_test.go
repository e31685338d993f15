package reservation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/elarose/storefront/internal/catalog"
	"github.com/elarose/storefront/pkg/db/dbtest"
	"github.com/elarose/storefront/pkg/db/models"
	dbtypes "github.com/elarose/storefront/pkg/db/types"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
)

func seedProduct(t *testing.T, db *gorm.DB, categoryID uuid.UUID, stock int) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Name:       "Item",
		Price:      decimal.NewFromInt(10),
		Images:     dbtypes.StringList{},
		Sizes:      dbtypes.StringList{},
		Colors:     dbtypes.StringList{},
		Stock:      stock,
		IsActive:   true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}

func TestReserveInventory(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	category := models.Category{ID: uuid.New(), Slug: "misc", Name: "Misc"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	productA := seedProduct(t, db, category.ID, 5)
	productB := seedProduct(t, db, category.ID, 1)

	requests := []InventoryReservationRequest{
		{ProductID: productA, Qty: 3},
		{ProductID: productA, Qty: 4},
		{ProductID: productB, Qty: 1},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		results, terr := ReserveInventory(ctx, catalog.NewRepository(tx), requests)
		if terr != nil {
			return terr
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		if !results[0].Reserved || results[0].Reason != "" {
			t.Fatalf("expected first reservation to succeed")
		}
		if results[1].Reserved || results[1].Reason == "" {
			t.Fatalf("expected second reservation to fail with reason")
		}
		if !results[2].Reserved {
			t.Fatalf("expected third reservation to succeed")
		}
		shortages := Shortages(results)
		if len(shortages) != 1 || shortages[productA.String()] == "" {
			t.Fatalf("unexpected shortages %v", shortages)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("reserve transaction: %v", err)
	}

	var a, b models.Product
	if err := db.First(&a, "id = ?", productA).Error; err != nil {
		t.Fatalf("load product a: %v", err)
	}
	if err := db.First(&b, "id = ?", productB).Error; err != nil {
		t.Fatalf("load product b: %v", err)
	}
	if a.Stock != 2 || b.Stock != 0 {
		t.Fatalf("unexpected stock a=%d b=%d", a.Stock, b.Stock)
	}
}

func TestReserveInventoryInvalidQty(t *testing.T) {
	db := dbtest.Open(t)
	_, err := ReserveInventory(context.Background(), catalog.NewRepository(db), []InventoryReservationRequest{{ProductID: uuid.New(), Qty: 0}})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}
