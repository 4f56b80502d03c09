package service

import (
	"context"
	"errors"
	"fmt"

	"filemart/internal/dto"
	"filemart/internal/model"
	"filemart/internal/repository"
)

// CartService owns cart rows for both users and guests; the caller passes
// the principal's cart key (account email or guest:<id>).
type CartService interface {
	Add(ctx context.Context, cartKey, productID string) error
	Remove(ctx context.Context, cartKey, productID string) error
	Get(ctx context.Context, cartKey string) (*dto.CartResponse, error)
}

type cartServiceImpl struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	rates       RateService
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	rates RateService,
) CartService {
	return &cartServiceImpl{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		rates:       rates,
	}
}

func (s *cartServiceImpl) Add(ctx context.Context, cartKey, productID string) error {
	if cartKey == "" {
		return model.ErrIdentityRequired
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("find product: %w", err)
	}

	err := s.cartRepo.Add(ctx, &model.CartItem{
		Email:     cartKey,
		ProductID: productID,
	})
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}

	return nil
}

func (s *cartServiceImpl) Remove(ctx context.Context, cartKey, productID string) error {
	if cartKey == "" {
		return model.ErrIdentityRequired
	}

	if err := s.cartRepo.Remove(ctx, cartKey, productID); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}

	return nil
}

func (s *cartServiceImpl) Get(ctx context.Context, cartKey string) (*dto.CartResponse, error) {
	resp := &dto.CartResponse{
		Items:    []dto.ProductResponse{},
		Currency: "CLP",
	}
	if cartKey == "" {
		// Anonymous browse: an empty cart, not an error.
		return resp, nil
	}

	items, err := s.cartRepo.List(ctx, cartKey)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	if len(items) == 0 {
		return resp, nil
	}

	productIDs := make([]string, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.FindMany(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("get cart products: %w", err)
	}

	byID := make(map[string]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			// Product removed from the catalog after being carted.
			continue
		}
		entry := dto.ProductResponse{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Currency: p.Currency,
		}
		if usd, ok := s.rates.ToUSD(ctx, p.Price); ok {
			entry.PriceUSD = usd
		}
		resp.Items = append(resp.Items, entry)
		resp.Total += p.Price
	}

	if usd, ok := s.rates.ToUSD(ctx, resp.Total); ok {
		resp.TotalUSD = usd
	}

	return resp, nil
}
