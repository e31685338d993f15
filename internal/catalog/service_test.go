package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elarose/storefront/pkg/db"
	"github.com/elarose/storefront/pkg/db/dbtest"
	"github.com/elarose/storefront/pkg/enums"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
)

func TestListProductsFiltersSortsAndPaginates(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{Repo: repo, DB: db.NewFromGorm(conn), PageSize: 2, MaxPageSize: 3})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	dresses := seedCategory(t, repo, "dresses")
	coats := seedCategory(t, repo, "coats")
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	seedProduct(t, conn, dresses.ID, "Maxi", "80.00", 1, base)
	seedProduct(t, conn, dresses.ID, "Mini", "25.00", 1, base.Add(time.Hour))
	seedProduct(t, conn, dresses.ID, "Midi", "55.00", 1, base.Add(2*time.Hour))
	seedProduct(t, conn, coats.ID, "Trench", "150.00", 1, base.Add(3*time.Hour))

	state := NewFilterState(0).WithSort(enums.SortPriceAsc)
	page, err := svc.ListProducts(ctx, ListQuery{CategorySlug: "dresses", State: state})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if page.Total != 3 || page.PageSize != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page %+v", page.PageInfo)
	}
	if page.Items[0].Name != "Mini" || page.Items[1].Name != "Midi" {
		t.Fatalf("unexpected order %s, %s", page.Items[0].Name, page.Items[1].Name)
	}
	if page.Items[0].Category != "dresses" {
		t.Fatalf("expected category slug, got %q", page.Items[0].Category)
	}

	lo := decimal.RequireFromString("50")
	filtered := state.WithFilter(Filter{MinPrice: &lo})
	filtered.PageSize = 50
	page, err = svc.ListProducts(ctx, ListQuery{State: filtered})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if page.PageSize != 3 {
		t.Fatalf("page size should clamp to max, got %d", page.PageSize)
	}
	if page.Total != 3 {
		t.Fatalf("expected 3 products at or above 50, got %d", page.Total)
	}

	if _, err := svc.ListProducts(ctx, ListQuery{CategorySlug: "shoes", State: state}); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown category, got %v", err)
	}

	hi := decimal.RequireFromString("10")
	bad := state.WithFilter(Filter{MinPrice: &lo, MaxPrice: &hi})
	if _, err := svc.ListProducts(ctx, ListQuery{State: bad}); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}
}

func TestCreateReviewRecomputesRating(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{Repo: repo, DB: db.NewFromGorm(conn)})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	category := seedCategory(t, repo, "tops")
	product := seedProduct(t, conn, category.ID, "Blouse", "35.00", 4, time.Now().UTC())

	if _, err := svc.CreateReview(ctx, "user-1", product.ID, ReviewInput{Rating: 6}); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.CreateReview(ctx, "", product.ID, ReviewInput{Rating: 4}); pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	for _, rating := range []int{5, 2} {
		if _, err := svc.CreateReview(ctx, "user-1", product.ID, ReviewInput{Rating: rating, Comment: " nice "}); err != nil {
			t.Fatalf("create review: %v", err)
		}
	}

	detail, err := svc.GetProductDetail(ctx, product.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.ReviewCount != 2 || len(detail.Reviews) != 2 {
		t.Fatalf("expected 2 reviews, got count=%d len=%d", detail.ReviewCount, len(detail.Reviews))
	}
	if detail.AverageRating < 3.49 || detail.AverageRating > 3.51 {
		t.Fatalf("expected average 3.5, got %v", detail.AverageRating)
	}
	if detail.Reviews[0].Comment != "nice" {
		t.Fatalf("comment should be trimmed, got %q", detail.Reviews[0].Comment)
	}
}

func TestCreateAndUpdateProduct(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{Repo: repo, DB: db.NewFromGorm(conn)})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	category := seedCategory(t, repo, "bags")

	if _, err := svc.CreateProduct(ctx, ProductInput{Name: ""}); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	created, err := svc.CreateProduct(ctx, ProductInput{
		CategoryID: category.ID,
		Name:       " Tote ",
		Price:      decimal.RequireFromString("59.999"),
		Sizes:      []string{"One Size", " one size ", ""},
		Colors:     []string{"Tan"},
		Stock:      7,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if created.Name != "Tote" || created.Price.String() != "60" || len(created.Sizes) != 1 {
		t.Fatalf("unexpected created product %+v", created)
	}
	if created.Category != "bags" {
		t.Fatalf("expected category slug, got %q", created.Category)
	}

	inactive := false
	updated, err := svc.UpdateProduct(ctx, created.ID, ProductInput{
		CategoryID: category.ID,
		Name:       "Tote",
		Price:      decimal.RequireFromString("49.00"),
		Stock:      3,
		IsActive:   &inactive,
	})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.Stock != 3 || updated.IsActive {
		t.Fatalf("unexpected updated product %+v", updated)
	}
	if _, err := svc.GetProductDetail(ctx, created.ID); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("inactive product should be hidden, got %v", err)
	}
}
