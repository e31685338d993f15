package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/elarose/storefront/internal/cart"
	"github.com/elarose/storefront/internal/pricing"
	"github.com/elarose/storefront/pkg/db/models"
	dbtypes "github.com/elarose/storefront/pkg/db/types"
	"github.com/elarose/storefront/pkg/enums"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/logger"
	"github.com/elarose/storefront/pkg/metrics"
	"github.com/elarose/storefront/pkg/outbox"
	"github.com/elarose/storefront/pkg/outbox/payloads"
	"github.com/elarose/storefront/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartLoader interface {
	Load(ctx context.Context, userID string) (cart.Cart, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ValidateInput is a code checked against an order amount and the
// categories present in the cart.
type ValidateInput struct {
	Code        string
	OrderAmount decimal.Decimal
	Categories  []string
}

// CreateInput is the admin payload for a new code.
type CreateInput struct {
	Code           string
	Name           string
	Type           enums.DiscountType
	Value          decimal.Decimal
	MinOrderAmount decimal.Decimal
	Categories     []string
	UsageLimit     *int
	StartsAt       *time.Time
	ExpiresAt      *time.Time
}

// Service validates discount codes and manages the discount attached to a
// user's cart.
type Service interface {
	Validate(ctx context.Context, input ValidateInput) (pricing.AppliedDiscount, error)
	ValidateForCart(ctx context.Context, userID, code string) (pricing.AppliedDiscount, error)
	Apply(ctx context.Context, userID, code string) (pricing.AppliedDiscount, error)
	Remove(ctx context.Context, userID string) error
	Current(ctx context.Context, userID string) (*pricing.AppliedDiscount, error)

	Create(ctx context.Context, input CreateInput) (*models.Discount, error)
	List(ctx context.Context, activeOnly bool) ([]models.Discount, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// ServiceParams groups dependencies for the discount service.
type ServiceParams struct {
	Repo    *Repository
	State   *StateStore
	Carts   cartLoader
	DB      txRunner
	Outbox  eventEmitter
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
	Now     func() time.Time
}

type service struct {
	repo     *Repository
	state    *StateStore
	resolver *Resolver
	carts    cartLoader
	db       txRunner
	outbox   eventEmitter
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	if params.State == nil {
		return nil, fmt.Errorf("discount state store required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart loader required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	resolver, err := NewResolver(params.Repo, params.State, now)
	if err != nil {
		return nil, err
	}
	return &service{
		repo:     params.Repo,
		state:    params.State,
		resolver: resolver,
		carts:    params.Carts,
		db:       params.DB,
		outbox:   params.Outbox,
		logg:     params.Logger,
		metrics:  params.Metrics,
		now:      now,
	}, nil
}

func (s *service) Validate(ctx context.Context, input ValidateInput) (pricing.AppliedDiscount, error) {
	discount, err := s.find(ctx, input.Code)
	if err != nil {
		return pricing.AppliedDiscount{}, err
	}
	return evaluate(discount, input.OrderAmount, input.Categories, s.now().UTC(), false)
}

func (s *service) ValidateForCart(ctx context.Context, userID, code string) (pricing.AppliedDiscount, error) {
	c, err := s.carts.Load(ctx, userID)
	if err != nil {
		return pricing.AppliedDiscount{}, err
	}
	discount, err := s.find(ctx, code)
	if err != nil {
		return pricing.AppliedDiscount{}, err
	}
	holds, err := s.repo.HasOpenRedemption(ctx, discount.ID, userID)
	if err != nil {
		return pricing.AppliedDiscount{}, err
	}
	return evaluate(discount, c.Total(), c.Categories(), s.now().UTC(), holds)
}

// Apply validates code against the user's cart and attaches it. The first
// apply by a user consumes one usage; applying a code the user already holds
// (a reapply, a retry or a concurrent duplicate) consumes nothing. A code it
// replaces gets its usage back.
func (s *service) Apply(ctx context.Context, userID, code string) (pricing.AppliedDiscount, error) {
	c, err := s.carts.Load(ctx, userID)
	if err != nil {
		return pricing.AppliedDiscount{}, err
	}
	if c.IsEmpty() {
		return pricing.AppliedDiscount{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	discount, err := s.find(ctx, code)
	if err != nil {
		s.metrics.DiscountOutcome("rejected")
		return pricing.AppliedDiscount{}, err
	}
	holds, err := s.repo.HasOpenRedemption(ctx, discount.ID, userID)
	if err != nil {
		return pricing.AppliedDiscount{}, err
	}
	applied, err := evaluate(discount, c.Total(), c.Categories(), s.now().UTC(), holds)
	if err != nil {
		s.metrics.DiscountOutcome("rejected")
		return pricing.AppliedDiscount{}, err
	}

	outcome := "reapplied"
	if !holds {
		err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
			if err := s.repo.WithTx(tx).OpenRedemption(ctx, discount.ID, userID); err != nil {
				return err
			}
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventDiscountRedeemed,
				AggregateType: enums.AggregateDiscount,
				AggregateID:   discount.ID,
				Actor:         &outbox.ActorRef{UserID: userID},
				Data: payloads.DiscountRedeemedEvent{
					DiscountID: discount.ID,
					Code:       discount.Code,
					UserID:     userID,
					Amount:     applied.DiscountAmount,
					RedeemedAt: applied.AppliedAt,
				},
			})
		})
		switch {
		case errors.Is(err, errAlreadyRedeemed):
			// a concurrent apply for the same user opened it first
		case err != nil:
			s.metrics.DiscountOutcome("failed")
			if pkgerrors.As(err) != nil {
				return pricing.AppliedDiscount{}, err
			}
			return pricing.AppliedDiscount{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redeem discount")
		default:
			outcome = "applied"
		}
	}

	logCtx := ctx
	if s.logg != nil {
		logCtx = s.logg.WithFields(ctx, map[string]any{"user_id": userID, "code": discount.Code})
	}
	previous, err := s.state.Attach(ctx, userID, applied)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(logCtx, "discount redeemed but state not saved", err)
		}
		return pricing.AppliedDiscount{}, err
	}
	if previous != nil && previous.DiscountID != applied.DiscountID {
		if err := s.resolver.release(ctx, *previous, userID); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "replaced discount usage not released")
		}
	}
	s.metrics.DiscountOutcome(outcome)
	return applied, nil
}

// Remove detaches the discount and returns its usage to the code.
func (s *service) Remove(ctx context.Context, userID string) error {
	return s.resolver.Remove(ctx, userID)
}

func (s *service) Current(ctx context.Context, userID string) (*pricing.AppliedDiscount, error) {
	return s.state.Current(ctx, userID)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Discount, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}
	discount := &models.Discount{
		ID:             uuid.New(),
		Code:           strings.ToUpper(strings.TrimSpace(input.Code)),
		Name:           strings.TrimSpace(input.Name),
		Type:           input.Type,
		Value:          types.RoundMoney(input.Value),
		MinOrderAmount: types.RoundMoney(input.MinOrderAmount),
		Categories:     dbtypes.StringList(normalizeCategories(input.Categories)),
		UsageLimit:     input.UsageLimit,
		StartsAt:       input.StartsAt,
		ExpiresAt:      input.ExpiresAt,
		IsActive:       true,
	}
	if discount.Name == "" {
		discount.Name = discount.Code
	}
	if err := s.repo.Create(ctx, discount); err != nil {
		return nil, err
	}
	return discount, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Discount, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount id is required")
	}
	return s.repo.Deactivate(ctx, id)
}

func (s *service) find(ctx context.Context, code string) (*models.Discount, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.Fields("discount code is required", map[string]string{"code": "required"})
	}
	return s.repo.FindByCode(ctx, code)
}

// evaluate checks every redemption rule and prices the discount against
// amount. holdsUsage skips the usage limit for a user who already consumed
// one of the counted usages.
func evaluate(d *models.Discount, amount decimal.Decimal, categories []string, now time.Time, holdsUsage bool) (pricing.AppliedDiscount, error) {
	if !d.IsActive {
		return pricing.AppliedDiscount{}, pkgerrors.New(pkgerrors.CodeValidation, "discount code is inactive")
	}
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return pricing.AppliedDiscount{}, pkgerrors.New(pkgerrors.CodeValidation, "discount code is not active yet")
	}
	if d.ExpiresAt != nil && !now.Before(*d.ExpiresAt) {
		return pricing.AppliedDiscount{}, pkgerrors.New(pkgerrors.CodeValidation, "discount code has expired")
	}
	if !holdsUsage && d.UsageLimit != nil && d.UsedCount >= *d.UsageLimit {
		return pricing.AppliedDiscount{}, pkgerrors.New(pkgerrors.CodeValidation, "discount code usage limit reached")
	}
	if amount.LessThan(d.MinOrderAmount) {
		return pricing.AppliedDiscount{}, pkgerrors.Newf(pkgerrors.CodeValidation, "minimum order amount is %s", d.MinOrderAmount.StringFixed(2)).
			WithDetails(map[string]any{"minOrderAmount": d.MinOrderAmount})
	}
	if len(d.Categories) > 0 && !anyCategoryMatches(d.Categories, categories) {
		return pricing.AppliedDiscount{}, pkgerrors.New(pkgerrors.CodeValidation, "discount code does not apply to the items in your cart")
	}

	applied := pricing.AppliedDiscount{
		DiscountID:   d.ID,
		Code:         d.Code,
		Name:         d.Name,
		Type:         d.Type,
		Value:        d.Value,
		FreeDelivery: d.Type == enums.DiscountTypeFreeDelivery,
		AppliedAt:    now,
	}
	applied.DiscountAmount = applied.AmountFor(amount)
	return applied, nil
}

func anyCategoryMatches(allowed dbtypes.StringList, categories []string) bool {
	for _, category := range categories {
		if allowed.Contains(category) {
			return true
		}
	}
	return false
}

func validateCreate(input CreateInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(input.Code) == "" {
		fields["code"] = "required"
	}
	if !input.Type.IsValid() {
		fields["type"] = "must be percentage, fixed or free_delivery"
	}
	switch input.Type {
	case enums.DiscountTypePercentage:
		if !input.Value.IsPositive() || input.Value.GreaterThan(decimal.NewFromInt(100)) {
			fields["value"] = "must be between 0 and 100"
		}
	case enums.DiscountTypeFixed:
		if !input.Value.IsPositive() {
			fields["value"] = "must be positive"
		}
	}
	if input.MinOrderAmount.IsNegative() {
		fields["minOrderAmount"] = "must not be negative"
	}
	if input.UsageLimit != nil && *input.UsageLimit < 1 {
		fields["usageLimit"] = "must be at least 1"
	}
	if input.StartsAt != nil && input.ExpiresAt != nil && !input.ExpiresAt.After(*input.StartsAt) {
		fields["expiresAt"] = "must be after startsAt"
	}
	if len(fields) > 0 {
		return pkgerrors.Fields("invalid discount", fields)
	}
	return nil
}

func normalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}
