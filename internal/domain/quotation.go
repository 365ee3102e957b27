package domain

import (
	"context"
	"time"
)

type QuotationItem struct {
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku,omitempty"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TaxPercent float64 `json:"tax_percent"`
	LineTotal  float64 `json:"line_total"`
}

// Quotation 由销售生成；PDF 由外部生成，这里只保存 URL
type Quotation struct {
	ID              string          `gorm:"primaryKey;size:36" json:"id"`
	QuotationNumber string          `gorm:"column:quotation_number;uniqueIndex;size:32;not null" json:"quotation_number"`
	CustomerName    string          `gorm:"column:customer_name;size:255;not null" json:"customer_name"`
	CustomerEmail   string          `gorm:"column:customer_email;size:255" json:"customer_email,omitempty"`
	CustomerPhone   string          `gorm:"column:customer_phone;size:32" json:"customer_phone,omitempty"`
	Items           []QuotationItem `gorm:"serializer:json" json:"items"`
	Subtotal        float64         `gorm:"type:numeric(14,2)" json:"subtotal"`
	TaxTotal        float64         `gorm:"column:tax_total;type:numeric(14,2)" json:"tax_total"`
	GrandTotal      float64         `gorm:"column:grand_total;type:numeric(14,2)" json:"grand_total"`
	PDFURL          *string         `gorm:"column:pdf_url" json:"pdf_url"`
	CreatedBy       string          `gorm:"column:created_by;index;size:36;not null" json:"created_by"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Quotation) TableName() string { return "quotations" }

type QuotationStore interface {
	Create(ctx context.Context, q *Quotation) error
}
