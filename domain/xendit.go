package domain

import "time"

type XenditInvoiceRequest struct {
	ExternalID         string              `json:"external_id"`
	Amount             float64             `json:"amount"`
	Description        string              `json:"description"`
	InvoiceDuration    int                 `json:"invoice_duration"`
	Customer           XenditCustomer      `json:"customer"`
	SuccessRedirectURL string              `json:"success_redirect_url,omitempty"`
	FailureRedirectURL string              `json:"failure_redirect_url,omitempty"`
	Currency           string              `json:"currency"`
	Items              []XenditInvoiceItem `json:"items"`
}

type XenditCustomer struct {
	GivenNames string `json:"given_names,omitempty"`
	Email      string `json:"email"`
}

type XenditInvoiceItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Category string  `json:"category,omitempty"`
}

type XenditResponse struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Status     string    `json:"status"`
	Amount     float64   `json:"amount"`
	InvoiceURL string    `json:"invoice_url"`
	ExpiryDate time.Time `json:"expiry_date"`
	Currency   string    `json:"currency"`
}

// XenditWebhook is the invoice callback body.
type XenditWebhook struct {
	ID            string    `json:"id"`
	ExternalID    string    `json:"external_id"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	PaidAmount    float64   `json:"paid_amount"`
	PayerEmail    string    `json:"payer_email"`
	PaidAt        time.Time `json:"paid_at"`
	Updated       time.Time `json:"updated"`
}

type PaymentLink struct {
	OrderID    uint      `json:"orderId"`
	InvoiceID  string    `json:"invoiceId"`
	InvoiceURL string    `json:"invoiceUrl"`
	Amount     float64   `json:"amount"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
