package domain

import (
	"context"
	"time"
)

type ProductSpec struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Product struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	Name        string        `gorm:"size:255;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Price       float64       `gorm:"type:numeric(12,2);not null" json:"price"`
	TaxPercent  float64       `gorm:"column:tax_percent;type:numeric(5,2);not null" json:"tax_percent"`
	Active      bool          `gorm:"not null" json:"active"`
	ImageURL    string        `gorm:"column:image_url" json:"image_url"`
	ImageFormat string        `gorm:"column:image_format;size:16" json:"image_format"`
	SKU         string        `gorm:"column:sku;size:64" json:"sku"`
	Category    string        `gorm:"size:64" json:"category"`
	Specs       []ProductSpec `gorm:"column:features;serializer:json" json:"specs"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (Product) TableName() string { return "products" }

type ProductFilter struct {
	Q          string
	ActiveOnly bool
}

type ProductStore interface {
	Create(ctx context.Context, p *Product) error
	Save(ctx context.Context, p *Product) (int64, error)
	FindByID(ctx context.Context, id string) (*Product, error) // 不存在返回 nil, nil
	FindByIDs(ctx context.Context, ids []string) ([]Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, error)
	SetActive(ctx context.Context, id string, active bool) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}
