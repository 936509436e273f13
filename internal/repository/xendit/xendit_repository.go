package xendit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"garmentFactory/domain"
)

const invoiceDurationSeconds = 3600

type XenditConfig struct {
	XenditApi          string
	XenditUrl          string
	SuccessRedirectUrl string
	FailureRedirectUrl string
	Currency           string
}

type XenditRepository struct {
	xenditConfig XenditConfig
	httpClient   *http.Client
}

func NewXenditRepository(cfg XenditConfig) *XenditRepository {
	if cfg.Currency == "" {
		cfg.Currency = "IDR"
	}
	return &XenditRepository{
		xenditConfig: cfg,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateInvoice opens a Xendit invoice for an order. The external id is the order id,
// which the webhook uses to find the order again.
func (r *XenditRepository) CreateInvoice(ctx context.Context, order domain.Order, user domain.User) (domain.XenditResponse, error) {
	items := make([]domain.XenditInvoiceItem, 0, len(order.OrderItems))
	for _, it := range order.OrderItems {
		items = append(items, domain.XenditInvoiceItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}

	payload := domain.XenditInvoiceRequest{
		ExternalID:      ExternalID(order.ID),
		Amount:          order.TotalPrice,
		Description:     fmt.Sprintf("payment order #%d %.2f", order.ID, order.TotalPrice),
		InvoiceDuration: invoiceDurationSeconds,
		Customer: domain.XenditCustomer{
			GivenNames: user.Name,
			Email:      user.Email,
		},
		SuccessRedirectURL: r.xenditConfig.SuccessRedirectUrl,
		FailureRedirectURL: r.xenditConfig.FailureRedirectUrl,
		Currency:           r.xenditConfig.Currency,
		Items:              items,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.XenditResponse{}, fmt.Errorf("failed to marshal invoice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.xenditConfig.XenditUrl, bytes.NewReader(body))
	if err != nil {
		return domain.XenditResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.xenditConfig.XenditApi, "")

	res, err := r.httpClient.Do(req)
	if err != nil {
		return domain.XenditResponse{}, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return domain.XenditResponse{}, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return domain.XenditResponse{}, fmt.Errorf("xendit return negative response %d: %s", res.StatusCode, resBody)
	}

	var invoice domain.XenditResponse
	if err := json.Unmarshal(resBody, &invoice); err != nil {
		return domain.XenditResponse{}, fmt.Errorf("failed to decode xendit response: %w", err)
	}

	return invoice, nil
}

const externalIDPrefix = "order-"

func ExternalID(orderID uint) string {
	return externalIDPrefix + strconv.FormatUint(uint64(orderID), 10)
}

// ParseExternalID is the inverse of ExternalID. The whole suffix must be a positive id.
func ParseExternalID(externalID string) (uint, error) {
	digits, found := strings.CutPrefix(externalID, externalIDPrefix)
	if !found {
		return 0, fmt.Errorf("invalid external id %q", externalID)
	}
	id, err := strconv.ParseUint(digits, 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid external id %q", externalID)
	}
	return uint(id), nil
}
