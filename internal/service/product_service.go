package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"farmerfriend-backend/internal/apperr"
	"farmerfriend-backend/internal/dto"
	"farmerfriend-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const maxProductImages = 3

type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

// ImageFile is one uploaded form file. A nil entry marks an unset slot.
type ImageFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

type ProductService struct {
	products ProductRepository
	accounts Accounts
	images   ImageStore
}

func NewProductService(products ProductRepository, accounts Accounts, images ImageStore) *ProductService {
	return &ProductService{products: products, accounts: accounts, images: images}
}

func (s *ProductService) AddProduct(ctx context.Context, who *Identity, in dto.ProductInput, files []*ImageFile) (*model.Product, error) {
	if err := who.requireAccount(); err != nil {
		return nil, err
	}
	if in.Name == "" || in.Price == "" || in.Description == "" || in.Category == "" || in.Stock == "" {
		return nil, apperr.Validation(msgAllFields)
	}
	price, perr := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	stock, serr := strconv.Atoi(strings.TrimSpace(in.Stock))
	if perr != nil || serr != nil || price < 0 || stock < 0 {
		return nil, apperr.Validation("Price and stock must be valid numbers")
	}

	urls, err := s.upload(ctx, files)
	if err != nil {
		return nil, err
	}

	p := &model.Product{
		Name:        in.Name,
		Price:       price,
		Description: in.Description,
		Category:    in.Category,
		Stock:       stock,
		Image:       urls,
		FarmerID:    who.ID,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// upload stores the set slots concurrently and keeps their slot order.
func (s *ProductService) upload(ctx context.Context, files []*ImageFile) ([]string, error) {
	var set []*ImageFile
	for _, f := range files {
		if f != nil {
			set = append(set, f)
		}
	}
	if len(set) > maxProductImages {
		set = set[:maxProductImages]
	}

	urls := make([]string, len(set))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range set {
		g.Go(func() error {
			r, err := f.Open()
			if err != nil {
				return fmt.Errorf("opening %s: %w", f.Name, err)
			}
			defer r.Close()

			url, err := s.images.Upload(gctx, r, f.Name)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// List returns every product with its owner joined.
func (s *ProductService) List(ctx context.Context) ([]*model.Product, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.joinFarmers(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, idHex string) (*model.Product, error) {
	p, err := s.find(ctx, idHex)
	if err != nil {
		return nil, err
	}
	if err := s.joinFarmers(ctx, []*model.Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// Remove deletes a product. Farmers may only remove their own.
func (s *ProductService) Remove(ctx context.Context, who *Identity, idHex string) (*model.Product, error) {
	p, err := s.find(ctx, idHex)
	if err != nil {
		return nil, err
	}
	if who.Role != model.RoleAdmin && p.FarmerID != who.ID {
		return nil, apperr.Forbidden("You don't have permission to remove this product")
	}

	deleted, err := s.products.Delete(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, apperr.NotFound(msgProductNotFound)
	}
	return p, nil
}

func (s *ProductService) FarmerProducts(ctx context.Context, who *Identity) ([]*model.Product, error) {
	return s.products.FindByFarmer(ctx, who.ID)
}

func (s *ProductService) UpdateStock(ctx context.Context, who *Identity, idHex string, stock *int) (*model.Product, error) {
	if idHex == "" || stock == nil {
		return nil, apperr.Validation("Product ID and stock are required")
	}
	if *stock < 0 {
		return nil, apperr.Validation("Stock must be a non-negative number")
	}

	p, err := s.find(ctx, idHex)
	if err != nil {
		return nil, err
	}
	if p.FarmerID != who.ID {
		return nil, apperr.Forbidden("You don't have permission to update this product")
	}

	updated, err := s.products.SetStock(ctx, p.ID, *stock)
	if err != nil {
		return nil, notFound(err, msgProductNotFound)
	}
	return updated, nil
}

func (s *ProductService) find(ctx context.Context, idHex string) (*model.Product, error) {
	if strings.TrimSpace(idHex) == "" {
		return nil, apperr.Validation("Product ID is required")
	}
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(idHex))
	if err != nil {
		return nil, apperr.NotFound(msgProductNotFound)
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgProductNotFound)
	}
	return p, nil
}

func (s *ProductService) joinFarmers(ctx context.Context, products []*model.Product) error {
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.FarmerID)
	}
	owners, err := s.accounts.Summaries(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range products {
		p.Farmer = owners[p.FarmerID]
	}
	return nil
}
