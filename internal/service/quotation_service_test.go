package service

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"salesdesk/internal/domain"
)

func setupQuotations() (*QuotationService, *memQuotations) {
	products := newMemProducts(
		domain.Product{ID: "p-1", Name: "Chair", SKU: "CH-1", Price: 19.99, TaxPercent: 18, Active: true},
		domain.Product{ID: "p-2", Name: "Desk", Price: 100, TaxPercent: 5, Active: true},
		domain.Product{ID: "p-3", Name: "Lamp", Price: 5, Active: false},
	)
	qs := &memQuotations{}
	svc := NewQuotationService(products, qs, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC) }
	return svc, qs
}

func TestQuotationService_CreateComputesTotals(t *testing.T) {
	svc, qs := setupQuotations()

	q, err := svc.Create(asSales(), CreateQuotationInput{
		CustomerName: " Acme ",
		Items: []QuotationItemInput{
			{ProductID: "p-1", Quantity: 3},
			{ProductID: "p-2", Quantity: 1},
		},
		PDFURL: "https://files.example.com/q.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme", q.CustomerName)
	assert.Equal(t, "sales-1", q.CreatedBy)
	assert.Regexp(t, regexp.MustCompile(`^QT-20250309-[0-9A-F]{6}$`), q.QuotationNumber)
	require.Len(t, q.Items, 2)
	assert.Equal(t, 59.97, q.Items[0].LineTotal)
	assert.Equal(t, "CH-1", q.Items[0].SKU)
	assert.Equal(t, 159.97, q.Subtotal)
	// 59.97*0.18=10.79 + 100*0.05=5
	assert.Equal(t, 15.79, q.TaxTotal)
	assert.Equal(t, 175.76, q.GrandTotal)
	require.NotNil(t, q.PDFURL)
	assert.Len(t, qs.rows, 1)
}

func TestQuotationService_Rejects(t *testing.T) {
	svc, qs := setupQuotations()

	_, err := svc.Create(asSales(), CreateQuotationInput{CustomerName: "Acme"})
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	_, err = svc.Create(asSales(), CreateQuotationInput{CustomerName: "Acme", Items: []QuotationItemInput{{ProductID: "p-3", Quantity: 1}}})
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err), "inactive product")

	_, err = svc.Create(asSales(), CreateQuotationInput{CustomerName: "Acme", Items: []QuotationItemInput{{ProductID: "p-1", Quantity: 0}}})
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	_, err = svc.Create(asSales(), CreateQuotationInput{Items: []QuotationItemInput{{ProductID: "p-1", Quantity: 1}}})
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	assert.Empty(t, qs.rows)
}

func TestQuotationService_StoreFailure(t *testing.T) {
	svc, qs := setupQuotations()
	qs.err = errors.New("db down")

	_, err := svc.Create(asAdmin(), CreateQuotationInput{CustomerName: "Acme", Items: []QuotationItemInput{{ProductID: "p-2", Quantity: 2}}})
	assert.Equal(t, domain.KindStoreWrite, domain.KindOf(err))
}
