package striperepo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"rentique/util/httpx"
)

const baseURL = "https://api.stripe.com/v1"

type httpRepo struct {
	secretKey string
	client    *http.Client
}

func NewHTTP(secretKey string) Repo {
	return &httpRepo{secretKey: secretKey, client: httpx.Client()}
}

// CreateIntent calls the payment-intents API. The intent is keyed back to the
// rental through metadata so the webhook can resolve it.
func (r *httpRepo) CreateIntent(req CreateIntentReq) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountCents, 10))
	form.Set("currency", req.Currency)
	form.Set("metadata[rental_id]", strconv.FormatInt(req.RentalID, 10))
	form.Set("metadata[user_id]", strconv.FormatInt(req.UserID, 10))
	form.Set("metadata[product_id]", strconv.FormatInt(req.ProductID, 10))

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+r.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe create intent failed: %s", resp.Status)
	}

	var out struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
		Status       string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("stripe: empty intent id")
	}
	return &Intent{ID: out.ID, ClientSecret: out.ClientSecret, Status: out.Status}, nil
}

func (r *httpRepo) CancelIntent(intentID string) error {
	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/payment_intents/"+intentID+"/cancel", nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+r.secretKey)

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("stripe cancel intent failed: %s", resp.Status)
	}
	return nil
}
