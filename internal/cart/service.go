package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/elarose/storefront/internal/pricing"
	"github.com/elarose/storefront/internal/slots"
	"github.com/elarose/storefront/pkg/db/models"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/logger"
	"github.com/elarose/storefront/pkg/metrics"
)

// SlotKind is the slot namespace holding carts.
const SlotKind = "cart"

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// discountState is the attached-discount surface the cart needs to price
// itself and to drop the discount once the cart is empty. Resolve re-checks
// the code against c and fails with a validation error when it no longer
// qualifies.
type discountState interface {
	Resolve(ctx context.Context, userID string, c Cart) (*pricing.AppliedDiscount, error)
	Remove(ctx context.Context, userID string) error
}

// AddItemInput is a request to put a product in the cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Size      string
	Color     string
	Quantity  int
}

// View is the priced cart returned to clients. DiscountNotice explains why
// an attached code is not reducing the total.
type View struct {
	Items          []LineItem      `json:"items"`
	ItemCount      int             `json:"itemCount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Quote          pricing.Quote   `json:"quote"`
	DiscountNotice string          `json:"discountNotice,omitempty"`
}

// Service exposes cart operations for a signed-in user.
type Service interface {
	Get(ctx context.Context, userID string) (View, error)
	Load(ctx context.Context, userID string) (Cart, error)
	AddToCart(ctx context.Context, userID string, input AddItemInput) (View, error)
	UpdateQuantity(ctx context.Context, userID string, productID uuid.UUID, variant Variant, quantity int) (View, error)
	RemoveFromCart(ctx context.Context, userID string, productID uuid.UUID, variant Variant) (View, error)
	Clear(ctx context.Context, userID string) error
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Slots     slots.KV
	TTL       time.Duration
	Products  productLoader
	Discounts discountState
	Policy    pricing.Policy
	Logger    *logger.Logger
	Metrics   *metrics.StorefrontMetrics
	Now       func() time.Time
}

type service struct {
	store     *slots.Store[Cart]
	products  productLoader
	discounts discountState
	policy    pricing.Policy
	logg      *logger.Logger
	metrics   *metrics.StorefrontMetrics
	now       func() time.Time
}

// NewService builds a cart service backed by the slot store.
func NewService(params ServiceParams) (Service, error) {
	if params.Slots == nil {
		return nil, fmt.Errorf("slot store required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if params.Discounts == nil {
		return nil, fmt.Errorf("discount state required")
	}
	store, err := slots.New[Cart](params.Slots, SlotKind, params.TTL)
	if err != nil {
		return nil, err
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		store:     store,
		products:  params.Products,
		discounts: params.Discounts,
		policy:    params.Policy,
		logg:      params.Logger,
		metrics:   params.Metrics,
		now:       now,
	}, nil
}

func (s *service) Load(ctx context.Context, userID string) (Cart, error) {
	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return c, nil
}

func (s *service) Get(ctx context.Context, userID string) (View, error) {
	c, err := s.Load(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, userID, c)
}

// AddToCart snapshots the product and merges it into the user's cart. Stock
// is not checked here; it is reserved when the order is placed.
func (s *service) AddToCart(ctx context.Context, userID string, input AddItemInput) (View, error) {
	if input.ProductID == uuid.Nil {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.loadProduct(ctx, input.ProductID)
	if err != nil {
		return View{}, err
	}
	size, err := pickOption("size", input.Size, product.Sizes)
	if err != nil {
		return View{}, err
	}
	color, err := pickOption("color", input.Color, product.Colors)
	if err != nil {
		return View{}, err
	}

	line := LineItem{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Image:    product.ImageURL,
		Size:     size,
		Color:    color,
		Quantity: input.Quantity,
	}
	if product.Category != nil {
		line.Category = product.Category.Slug
	}

	updated, err := s.store.Update(ctx, userID, func(c *Cart) error {
		c.Add(line)
		c.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return View{}, err
	}
	s.metrics.CartMutation("add")
	return s.view(ctx, userID, updated)
}

func (s *service) UpdateQuantity(ctx context.Context, userID string, productID uuid.UUID, variant Variant, quantity int) (View, error) {
	updated, err := s.store.Update(ctx, userID, func(c *Cart) error {
		if !c.SetQuantity(productID, variant, quantity) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		c.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return View{}, err
	}
	s.metrics.CartMutation("update")
	if err := s.afterMutation(ctx, userID, updated); err != nil {
		return View{}, err
	}
	return s.view(ctx, userID, updated)
}

// RemoveFromCart is idempotent: removing a missing line succeeds.
func (s *service) RemoveFromCart(ctx context.Context, userID string, productID uuid.UUID, variant Variant) (View, error) {
	updated, err := s.store.Update(ctx, userID, func(c *Cart) error {
		if c.Remove(productID, variant) {
			c.UpdatedAt = s.now().UTC()
		}
		return nil
	})
	if err != nil {
		return View{}, err
	}
	s.metrics.CartMutation("remove")
	if err := s.afterMutation(ctx, userID, updated); err != nil {
		return View{}, err
	}
	return s.view(ctx, userID, updated)
}

// Clear empties the cart and drops any attached discount.
func (s *service) Clear(ctx context.Context, userID string) error {
	if err := s.store.Clear(ctx, userID); err != nil {
		return err
	}
	s.metrics.CartMutation("clear")
	return s.discounts.Remove(ctx, userID)
}

func (s *service) afterMutation(ctx context.Context, userID string, c Cart) error {
	if !c.IsEmpty() {
		return nil
	}
	if err := s.discounts.Remove(ctx, userID); err != nil {
		return err
	}
	if s.logg != nil {
		s.logg.Debug(s.logg.WithUserID(ctx, userID), "cart emptied, discount cleared")
	}
	return nil
}

func (s *service) view(ctx context.Context, userID string, c Cart) (View, error) {
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	var notice string
	applied, err := s.discounts.Resolve(ctx, userID, c)
	if err != nil {
		if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
			return View{}, err
		}
		applied = nil
		notice = pkgerrors.As(err).Message()
	}
	subtotal := c.Total()
	return View{
		Items:          c.Items,
		ItemCount:      c.ItemCount(),
		Subtotal:       subtotal,
		Quote:          pricing.Compute(subtotal, applied, s.policy),
		DiscountNotice: notice,
	}, nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	return product, nil
}

// pickOption returns the catalog spelling of the requested option. Products
// that offer options require one to be chosen.
func pickOption(field, requested string, offered []string) (string, error) {
	requested = strings.TrimSpace(requested)
	if len(offered) == 0 {
		if requested != "" {
			return "", pkgerrors.Fields(field+" is not offered for this product", map[string]string{field: "not offered"})
		}
		return "", nil
	}
	if requested == "" {
		return "", pkgerrors.Fields(field+" is required", map[string]string{field: "required"})
	}
	for _, option := range offered {
		if strings.EqualFold(strings.TrimSpace(option), requested) {
			return option, nil
		}
	}
	return "", pkgerrors.Fields(field+" is not offered for this product", map[string]string{field: "not offered"})
}
