package discounts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/elarose/storefront/internal/cart"
	"github.com/elarose/storefront/internal/slots/slotstest"
	"github.com/elarose/storefront/pkg/db"
	"github.com/elarose/storefront/pkg/db/dbtest"
	"github.com/elarose/storefront/pkg/db/models"
	"github.com/elarose/storefront/pkg/enums"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/outbox"
)

type stubCarts map[string]cart.Cart

func (s stubCarts) Load(_ context.Context, userID string) (cart.Cart, error) {
	return s[userID], nil
}

type fixture struct {
	svc   Service
	repo  *Repository
	state *StateStore
	conn  *gorm.DB
}

func newFixture(t *testing.T, carts stubCarts) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	state, err := NewStateStore(slotstest.NewMemory(), time.Hour)
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		State:  state,
		Carts:  carts,
		DB:     db.NewFromGorm(conn),
		Outbox: outbox.NewService(outbox.NewRepository(conn), nil),
	})
	require.NoError(t, err)
	return fixture{svc: svc, repo: repo, state: state, conn: conn}
}

func cartWith(price string, qty int, category string) cart.Cart {
	return cart.Cart{Items: []cart.LineItem{{
		ID:       uuid.New(),
		Name:     "Item",
		Price:    decimal.RequireFromString(price),
		Category: category,
		Quantity: qty,
	}}}
}

func TestValidateComputesAmounts(t *testing.T) {
	f := newFixture(t, stubCarts{})
	ctx := context.Background()
	seedDiscount(t, f.repo, func(d *models.Discount) { d.Code = "PCT"; d.Value = decimal.NewFromInt(15) })
	seedDiscount(t, f.repo, func(d *models.Discount) {
		d.Code = "FIXED"
		d.Type = enums.DiscountTypeFixed
		d.Value = decimal.NewFromInt(50)
	})
	seedDiscount(t, f.repo, func(d *models.Discount) {
		d.Code = "SHIPFREE"
		d.Type = enums.DiscountTypeFreeDelivery
		d.Value = decimal.Zero
	})

	got, err := f.svc.Validate(ctx, ValidateInput{Code: "pct", OrderAmount: decimal.NewFromInt(40)})
	require.NoError(t, err)
	assert.True(t, got.DiscountAmount.Equal(decimal.NewFromInt(6)), got.DiscountAmount.String())

	got, err = f.svc.Validate(ctx, ValidateInput{Code: "FIXED", OrderAmount: decimal.NewFromInt(30)})
	require.NoError(t, err)
	assert.True(t, got.DiscountAmount.Equal(decimal.NewFromInt(30)), "fixed amount is capped at the order amount")

	got, err = f.svc.Validate(ctx, ValidateInput{Code: "SHIPFREE", OrderAmount: decimal.NewFromInt(30)})
	require.NoError(t, err)
	assert.True(t, got.FreeDelivery)
	assert.True(t, got.DiscountAmount.IsZero())
}

func TestValidateRejections(t *testing.T) {
	f := newFixture(t, stubCarts{})
	ctx := context.Background()
	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)
	limit := 1

	seedDiscount(t, f.repo, func(d *models.Discount) { d.Code = "EXPIRED"; d.ExpiresAt = &past })
	seedDiscount(t, f.repo, func(d *models.Discount) { d.Code = "LATER"; d.StartsAt = &future })
	seedDiscount(t, f.repo, func(d *models.Discount) { d.Code = "USEDUP"; d.UsageLimit = &limit; d.UsedCount = 1 })
	seedDiscount(t, f.repo, func(d *models.Discount) { d.Code = "BIGSPEND"; d.MinOrderAmount = decimal.NewFromInt(100) })
	seedDiscount(t, f.repo, func(d *models.Discount) { d.Code = "SHOES"; d.Categories = []string{"shoes"} })

	tests := []struct {
		code string
		want pkgerrors.Code
	}{
		{"NOPE", pkgerrors.CodeNotFound},
		{"EXPIRED", pkgerrors.CodeValidation},
		{"LATER", pkgerrors.CodeValidation},
		{"USEDUP", pkgerrors.CodeValidation},
		{"BIGSPEND", pkgerrors.CodeValidation},
		{"SHOES", pkgerrors.CodeValidation},
		{"", pkgerrors.CodeValidation},
	}
	for _, tc := range tests {
		_, err := f.svc.Validate(ctx, ValidateInput{Code: tc.code, OrderAmount: decimal.NewFromInt(50), Categories: []string{"dresses"}})
		assert.Equal(t, tc.want, pkgerrors.CodeOf(err), "code %q: %v", tc.code, err)
	}

	_, err := f.svc.Validate(ctx, ValidateInput{Code: "SHOES", OrderAmount: decimal.NewFromInt(50), Categories: []string{"dresses", "Shoes"}})
	assert.NoError(t, err)
}

func TestApplyConsumesUsageAndStoresState(t *testing.T) {
	f := newFixture(t, stubCarts{"user-1": cartWith("10", 2, "dresses")})
	ctx := context.Background()
	d := seedDiscount(t, f.repo, func(d *models.Discount) {
		d.Code = "FIVE"
		d.Type = enums.DiscountTypeFixed
		d.Value = decimal.NewFromInt(5)
	})

	applied, err := f.svc.Apply(ctx, "user-1", "five")
	require.NoError(t, err)
	assert.Equal(t, "FIVE", applied.Code)
	assert.True(t, applied.DiscountAmount.Equal(decimal.NewFromInt(5)))

	current, err := f.svc.Current(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "FIVE", current.Code)

	reloaded, err := f.repo.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.UsedCount)

	var events int64
	require.NoError(t, f.conn.Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventDiscountRedeemed).Count(&events).Error)
	assert.Equal(t, int64(1), events)

	// reapplying the attached code is a no-op
	_, err = f.svc.Apply(ctx, "user-1", "FIVE")
	require.NoError(t, err)
	reloaded, err = f.repo.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.UsedCount)

	require.NoError(t, f.svc.Remove(ctx, "user-1"))
	current, err = f.svc.Current(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestApplyRejectsEmptyCart(t *testing.T) {
	f := newFixture(t, stubCarts{})
	seedDiscount(t, f.repo, nil)

	_, err := f.svc.Apply(context.Background(), "user-1", "SPRING10")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestApplyBelowMinimumLeavesUsageUntouched(t *testing.T) {
	f := newFixture(t, stubCarts{"user-1": cartWith("10", 1, "")})
	ctx := context.Background()
	d := seedDiscount(t, f.repo, func(d *models.Discount) { d.MinOrderAmount = decimal.NewFromInt(50) })

	_, err := f.svc.Apply(ctx, "user-1", "SPRING10")
	require.Error(t, err)

	reloaded, err := f.repo.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.UsedCount)
	current, err := f.state.Current(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestCreateValidatesAndNormalizes(t *testing.T) {
	f := newFixture(t, stubCarts{})
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{Code: "x", Type: enums.DiscountTypePercentage, Value: decimal.NewFromInt(150)})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	created, err := f.svc.Create(ctx, CreateInput{
		Code:       " summer ",
		Type:       enums.DiscountTypeFixed,
		Value:      decimal.RequireFromString("7.5"),
		Categories: []string{" Dresses ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "SUMMER", created.Code)
	assert.Equal(t, "SUMMER", created.Name)
	assert.Equal(t, []string{"dresses"}, []string(created.Categories))

	list, err := f.svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.svc.Deactivate(ctx, created.ID))
	_, err = f.svc.Validate(ctx, ValidateInput{Code: "SUMMER", OrderAmount: decimal.NewFromInt(20)})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestApplyRemoveApplyHoldsOneUsage(t *testing.T) {
	f := newFixture(t, stubCarts{"user-1": cartWith("10", 2, "dresses")})
	ctx := context.Background()
	limit := 1
	d := seedDiscount(t, f.repo, func(d *models.Discount) { d.UsageLimit = &limit })

	for i := 0; i < 3; i++ {
		_, err := f.svc.Apply(ctx, "user-1", "SPRING10")
		require.NoError(t, err, "apply round %d", i)

		reloaded, err := f.repo.FindByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, reloaded.UsedCount, "apply round %d", i)

		require.NoError(t, f.svc.Remove(ctx, "user-1"))
		reloaded, err = f.repo.FindByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Zero(t, reloaded.UsedCount, "remove round %d", i)
	}

	var open int64
	require.NoError(t, f.conn.Model(&models.DiscountRedemption{}).Count(&open).Error)
	assert.Zero(t, open)
}

func TestApplyReplacingCodeReleasesPrevious(t *testing.T) {
	f := newFixture(t, stubCarts{"user-1": cartWith("10", 2, "dresses")})
	ctx := context.Background()
	first := seedDiscount(t, f.repo, nil)
	second := seedDiscount(t, f.repo, func(d *models.Discount) { d.Code = "FIVE"; d.Type = enums.DiscountTypeFixed; d.Value = decimal.NewFromInt(5) })

	_, err := f.svc.Apply(ctx, "user-1", "SPRING10")
	require.NoError(t, err)
	_, err = f.svc.Apply(ctx, "user-1", "FIVE")
	require.NoError(t, err)

	reloaded, err := f.repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.UsedCount)
	reloaded, err = f.repo.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.UsedCount)

	current, err := f.state.Current(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, second.ID, current.DiscountID)
}

func TestApplyConcurrentDuplicatesConsumeOnce(t *testing.T) {
	f := newFixture(t, stubCarts{"user-1": cartWith("10", 2, "dresses")})
	ctx := context.Background()
	// shared-cache sqlite locks tables per connection
	sqlDB, err := f.conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	limit := 5
	d := seedDiscount(t, f.repo, func(d *models.Discount) { d.UsageLimit = &limit })

	const callers = 4
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Apply(ctx, "user-1", "SPRING10")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	reloaded, err := f.repo.FindByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.UsedCount)
	var events int64
	require.NoError(t, f.conn.Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventDiscountRedeemed).Count(&events).Error)
	assert.Equal(t, int64(1), events)
}
