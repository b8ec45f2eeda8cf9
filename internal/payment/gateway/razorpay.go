// Package gateway implements the payment-capture collaborator against
// the Razorpay REST API. The widget captures the charge client-side;
// this client only confirms the capture server-side.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	paymentdomain "github.com/aquameter/aquameter/internal/payment/domain"
	"github.com/aquameter/aquameter/pkg/apperror"
	"github.com/shopspring/decimal"
)

type razorpayPayment struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type Razorpay struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewRazorpay(keyID, keySecret, baseURL string) *Razorpay {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	return &Razorpay{
		keyID:     strings.TrimSpace(keyID),
		keySecret: strings.TrimSpace(keySecret),
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 12 * time.Second},
	}
}

func (g *Razorpay) VerifyCharge(ctx context.Context, reference string) (*paymentdomain.GatewayCharge, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, paymentdomain.ErrChargeNotFound
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/payments/"+reference, nil)
	if err != nil {
		return nil, apperror.Wrap(paymentdomain.ErrGatewayFailed, err)
	}
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, apperror.Wrap(paymentdomain.ErrGatewayFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, paymentdomain.ErrChargeNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, apperror.Wrap(paymentdomain.ErrGatewayFailed, errors.New("razorpay_request_failed"))
	}

	var out razorpayPayment
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperror.Wrap(paymentdomain.ErrGatewayFailed, err)
	}
	if out.ID == "" {
		return nil, paymentdomain.ErrChargeNotFound
	}

	return &paymentdomain.GatewayCharge{
		Reference: out.ID,
		Amount:    decimal.NewFromInt(out.Amount).Div(decimal.NewFromInt(100)),
		Currency:  out.Currency,
		Captured:  out.Status == "captured",
	}, nil
}
