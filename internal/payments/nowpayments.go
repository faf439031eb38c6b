package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// InvoiceRequest: body persis yg diminta NOWPayments /v1/invoice.
type InvoiceRequest struct {
	PriceAmount      float64 `json:"price_amount"` // total dalam USD, 2 desimal
	PriceCurrency    string  `json:"price_currency"`
	PayCurrency      string  `json:"pay_currency"`
	OrderID          string  `json:"order_id"`
	OrderDescription string  `json:"order_description"`
	IPNCallbackURL   string  `json:"ipn_callback_url"`
	SuccessURL       string  `json:"success_url"`
	CancelURL        string  `json:"cancel_url"`
}

type invoiceResponse struct {
	InvoiceURL string `json:"invoice_url"`
}

// IPN: body yg dikirim balik provider ke callback. Field seperlunya saja.
// payment_id numerik besar (10+ digit); json.Number menjaga bentuk
// desimalnya utuh, jangan sampai jadi notasi eksponen lewat float64.
type IPN struct {
	OrderID     string      `json:"order_id"`
	PaymentID   json.Number `json:"payment_id"`
	PriceAmount float64     `json:"price_amount"`
	PayCurrency string      `json:"pay_currency"`
	Status      string      `json:"payment_status"`
}

// Client utk hosted-invoice API. Satu call sync per checkout; timeout
// dari config supaya provider lambat tidak menggantung request selamanya.
type Client struct {
	URL    string
	APIKey string
	HTTP   *http.Client
}

func NewClient(url, apiKey string, timeout time.Duration) *Client {
	return &Client{
		URL:    url,
		APIKey: apiKey,
		HTTP:   &http.Client{Timeout: timeout},
	}
}

// CreateInvoice: POST ke API, balikin URL halaman invoice hosted.
func (c *Client) CreateInvoice(ctx context.Context, req InvoiceRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	hr.Header.Set("x-api-key", c.APIKey)
	hr.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(hr)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("nowpayments status %d: %s", resp.StatusCode, bytes.TrimSpace(b))
	}

	var out invoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.InvoiceURL == "" {
		return "", fmt.Errorf("nowpayments: empty invoice_url")
	}
	return out.InvoiceURL, nil
}
