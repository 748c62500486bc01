package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/alvbalcab/PetJoy/internal/catalog"
	"github.com/alvbalcab/PetJoy/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

var ErrProductUnavailable = errors.New("product is not available")

type Service struct {
	repo     CartRepository
	cache    CartCache
	products catalog.ProductRepository
	sfg      singleflight.Group // Prevents cache stampede
}

func NewService(repo CartRepository, cache CartCache, products catalog.ProductRepository) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		products: products,
	}
}

func (s *Service) GetCart(ctx context.Context, visitorID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(visitorID, func() (interface{}, error) {

		cart, err := s.cache.Get(ctx, visitorID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v \n", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, visitorID)
		if errGet != nil && errors.Is(errGet, ErrCartNotFound) { // not found cart return empty cart
			return &domain.Cart{
				VisitorID: visitorID,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet // err from repo is not cache miss, return it
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), visitorID, cart)
			if errSet != nil {
				log.Printf("cache set error: %v \n", errSet)
			}
		}()

		return cart, nil // cart was not in cache, return it from repo
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// Add inserts or updates the (product, size) line. Quantity accumulates unless
// overwrite is set. The current effective price is snapshotted onto the line.
func (s *Service) Add(ctx context.Context, visitorID string, productID int64, size string, quantity int32, overwrite bool) error {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("lookup product %d: %w", productID, err)
	}
	if !product.Available {
		return ErrProductUnavailable
	}

	item := domain.CartItem{
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
		UnitPrice: product.EffectivePrice().String(),
	}

	errAdd := s.repo.AddItem(ctx, visitorID, item, overwrite)
	if errAdd != nil {
		log.Printf("repo add item error: %v \n", errAdd)
		return errAdd
	}

	invalidateCache(s, visitorID)
	return nil
}

// Remove deletes the matching line; removing an absent line is a no-op.
func (s *Service) Remove(ctx context.Context, visitorID string, productID int64, size string) error {
	errRemove := s.repo.RemoveItem(ctx, visitorID, productID, size)
	if errRemove != nil && !errors.Is(errRemove, ErrCartNotFound) && !errors.Is(errRemove, ErrItemNotFound) {
		log.Printf("repo remove item error: %v \n", errRemove)
		return errRemove
	}

	invalidateCache(s, visitorID)
	return nil
}

func (s *Service) Clear(ctx context.Context, visitorID string) error {
	errDelete := s.repo.DeleteCart(ctx, visitorID)
	if errDelete != nil && !errors.Is(errDelete, ErrCartNotFound) {
		log.Printf("repo delete cart error: %v \n", errDelete)
		return errDelete
	}

	invalidateCache(s, visitorID)
	return nil
}

// Len returns the number of distinct lines.
func (s *Service) Len(ctx context.Context, visitorID string) (int, error) {
	cart, err := s.GetCart(ctx, visitorID)
	if err != nil {
		return 0, err
	}
	return len(cart.Items), nil
}

// Lines re-reads the cart and prices each line with the product's current
// effective price, so repeated calls reflect both cart and price changes.
func (s *Service) Lines(ctx context.Context, visitorID string) ([]domain.CartLine, error) {
	cart, err := s.GetCart(ctx, visitorID)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, err := s.products.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("lookup product %d: %w", item.ProductID, err)
		}

		unit := product.EffectivePrice()
		lines = append(lines, domain.CartLine{
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Size:        item.Size,
			Quantity:    item.Quantity,
			UnitPrice:   unit,
			Total:       unit.Mul(decimal.NewFromInt32(item.Quantity)),
		})
	}

	return lines, nil
}

func invalidateCache(s *Service, visitorID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errInvalidate := s.cache.Delete(ctx, visitorID)
	if errInvalidate != nil {
		log.Printf("cache invalidate error: %v \n", errInvalidate)
	}
}
