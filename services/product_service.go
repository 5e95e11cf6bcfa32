package services

import (
	"context"
	"errors"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/models"

	"gorm.io/gorm"
)

type ProductDetail struct {
	Product     models.Product      `json:"product"`
	Nutritions  []models.Nutrition  `json:"nutritions"`
	Ingredients []models.Ingredient `json:"ingredients"`
}

type ProductService struct {
	db     *gorm.DB
	images ImageStorage
}

func NewProductService(db *gorm.DB, images ImageStorage) *ProductService {
	return &ProductService{db: db, images: images}
}

func (s *ProductService) Get(productID string) (*models.Product, error) {
	var product models.Product
	err := s.db.First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) GetByBarcode(barcode string) (*models.Product, error) {
	var product models.Product
	err := s.db.Where("barcode = ?", barcode).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) GetDetail(productID string) (*ProductDetail, error) {
	product, err := s.Get(productID)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetail{Product: *product}
	if err := s.db.Where("product_id = ?", productID).
		Find(&detail.Nutritions).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("product_id = ?", productID).
		Order("order_index ASC").Find(&detail.Ingredients).Error; err != nil {
		return nil, err
	}
	return detail, nil
}

// AttachImage stores the image and points the product at its public URL.
func (s *ProductService) AttachImage(ctx context.Context, productID string, data []byte, contentType string) (*models.Product, error) {
	product, err := s.Get(productID)
	if err != nil {
		return nil, err
	}
	url, err := s.images.Upload(ctx, data, contentType, "products/"+product.ID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{"image_url": url}).Error; err != nil {
		return nil, err
	}
	product.ImageURL = url
	return product, nil
}
