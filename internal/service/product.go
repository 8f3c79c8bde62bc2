package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/daru-pasal/liquor_shop/internal/models"
	"github.com/daru-pasal/liquor_shop/internal/repo"
	"github.com/daru-pasal/liquor_shop/internal/transport"
)

type ProductService struct {
	Repo *repo.GormRepo
}

func (s *ProductService) List(ctx context.Context, f repo.ProductFilter) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx, f)
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, req transport.ProductRequest) (*models.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:           req.Name,
		Category:       req.Category,
		Price:          req.Price,
		Description:    req.Description,
		AlcoholContent: req.AlcoholContent,
		Volume:         req.Volume,
		Origin:         req.Origin,
		Image:          req.Image,
		StockQuantity:  req.StockQuantity,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, req transport.ProductRequest) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	p.Name = req.Name
	p.Category = req.Category
	p.Price = req.Price
	p.Description = req.Description
	p.AlcoholContent = req.AlcoholContent
	p.Volume = req.Volume
	p.Origin = req.Origin
	p.Image = req.Image
	p.StockQuantity = req.StockQuantity

	if err := s.Repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return err
	}
	return nil
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.Repo.ListCategories(ctx)
}

func validateProduct(req transport.ProductRequest) error {
	if req.Name == "" || req.Category == "" || req.Description == "" {
		return fmt.Errorf("%w: name, category, price, and description are required", ErrValidation)
	}
	if req.Price <= 0 {
		return fmt.Errorf("%w: price must be greater than 0", ErrValidation)
	}
	return nil
}
