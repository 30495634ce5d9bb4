package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/app/repositories"
	"github.com/shashiranjanraj/enventory/pkg/cache"
	"github.com/shashiranjanraj/enventory/pkg/logger"
	"github.com/shashiranjanraj/enventory/pkg/response"
	"github.com/shashiranjanraj/enventory/pkg/storage"
)

const (
	productCacheKey = "products:first-page"
	productCacheTTL = time.Minute
)

// ImageUpload is an in-memory product image received with the create form.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Products   []models.Product    `json:"products"`
	Pagination response.Pagination `json:"pagination"`
}

// CatalogService manages the product catalog: creation with image upload,
// deletion, and paginated listing with a cached first page.
type CatalogService struct {
	products repositories.ProductRepository
	disk     storage.Disk
}

// NewCatalogService builds the service. disk may be nil, in which case
// image uploads are rejected.
func NewCatalogService(products repositories.ProductRepository, disk storage.Disk) *CatalogService {
	return &CatalogService{products: products, disk: disk}
}

func randomImagePath(filename string) string {
	buf := make([]byte, 8)
	rand.Read(buf)
	ext := strings.ToLower(path.Ext(filename))
	return "products/" + hex.EncodeToString(buf) + ext
}

// AddProduct stores the image first, then the document. If the document
// insert fails the uploaded image is removed again.
func (s *CatalogService) AddProduct(ctx context.Context, in models.ProductInput, image *ImageUpload) (*models.Product, error) {
	p := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Size:        in.Size,
		Color:       in.Color,
	}

	var imagePath string
	if image != nil {
		if s.disk == nil {
			return nil, fmt.Errorf("image upload: %w", models.ErrInternal)
		}
		imagePath = randomImagePath(image.Filename)
		if err := s.disk.Put(ctx, imagePath, image.Data); err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		p.ImageURL = s.disk.URL(imagePath)
	}

	if err := s.products.Create(ctx, p); err != nil {
		if imagePath != "" {
			if derr := s.disk.Delete(ctx, imagePath); derr != nil {
				logger.WithCtx(ctx).Warn("orphaned product image", "path", imagePath, "error", derr.Error())
			}
		}
		return nil, err
	}

	s.invalidateCache(ctx)
	logger.WithCtx(ctx).Info("product added", "id", p.ID.Hex(), "name", p.Name)
	return p, nil
}

// DeleteProduct removes a product. Existing orders referencing it stay.
func (s *CatalogService) DeleteProduct(ctx context.Context, idHex string) error {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return fmt.Errorf("product id %q: %w", idHex, models.ErrValidation)
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	logger.WithCtx(ctx).Info("product deleted", "id", idHex)
	return nil
}

// GetProduct fetches one product by ID.
func (s *CatalogService) GetProduct(ctx context.Context, idHex string) (*models.Product, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, fmt.Errorf("product id %q: %w", idHex, models.ErrValidation)
	}
	return s.products.FindByID(ctx, id)
}

// ListProducts returns a page of products, newest first. The unfiltered
// first page at the default limit is served from cache when possible.
func (s *CatalogService) ListProducts(ctx context.Context, page, limit int, search string) (*ProductPage, error) {
	page, limit = response.Coerce(page, limit)

	cacheable := page == 1 && limit == response.DefaultLimit && search == ""
	if cacheable {
		var cached ProductPage
		if hit, _ := cache.Get(ctx, productCacheKey, &cached); hit {
			return &cached, nil
		}
	}

	products, total, err := s.products.List(ctx, int64(page), int64(limit), search)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}

	result := &ProductPage{
		Products:   products,
		Pagination: response.NewPagination(page, limit, total),
	}

	if cacheable {
		if err := cache.Set(ctx, productCacheKey, result, productCacheTTL); err != nil {
			logger.WithCtx(ctx).Warn("product cache write failed", "error", err.Error())
		}
	}
	return result, nil
}

// UploadImage stores a standalone image and returns its public URL.
func (s *CatalogService) UploadImage(ctx context.Context, image ImageUpload) (string, error) {
	if s.disk == nil {
		return "", fmt.Errorf("image upload: %w", models.ErrInternal)
	}

	imagePath := randomImagePath(image.Filename)
	if err := s.disk.Put(ctx, imagePath, image.Data); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return s.disk.URL(imagePath), nil
}

func (s *CatalogService) invalidateCache(ctx context.Context) {
	if err := cache.Del(ctx, productCacheKey); err != nil {
		logger.WithCtx(ctx).Warn("product cache invalidation failed", "error", err.Error())
	}
}
