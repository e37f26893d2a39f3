// Package mercadopago implements the payment gateway against the Mercado
// Pago Checkout Pro REST API.
package mercadopago

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/powerfit/powerfit-api/internal/domain/payment"
)

// DefaultBaseURL is the production Mercado Pago API endpoint.
const DefaultBaseURL = "https://api.mercadopago.com"

// APIError is a non-2xx response from Mercado Pago.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return errors.Errorf("mercadopago: unexpected status %d", e.StatusCode).Error()
	}
	return errors.Errorf("mercadopago: %s (status %d)", e.Message, e.StatusCode).Error()
}

// Client calls the Mercado Pago API. It implements payment.Gateway.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

var _ payment.Gateway = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the API endpoint, mainly for sandbox use and tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// NewClient creates a Client authenticated with the given access token.
func NewClient(accessToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreatePreference creates a Checkout Pro preference and returns its id and
// redirect URLs.
func (c *Client) CreatePreference(ctx context.Context, req *payment.PreferenceRequest) (*payment.Preference, error) {
	body, err := c.do(ctx, http.MethodPost, "/checkout/preferences", encodePreference(req))
	if err != nil {
		return nil, errors.Wrap(err, "create preference")
	}
	return decodePreference(body)
}

// GetPreference fetches an existing preference by id.
func (c *Client) GetPreference(ctx context.Context, preferenceID string) (*payment.Preference, error) {
	body, err := c.do(ctx, http.MethodGet, "/checkout/preferences/"+preferenceID, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "get preference %s", preferenceID)
	}
	return decodePreference(body)
}

// GetPayment fetches the authoritative state of a payment by id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*payment.Info, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "get payment %s", paymentID)
	}
	return decodePayment(body)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: decodeErrorMessage(data)}
	}

	return data, nil
}

func encodePreference(req *payment.PreferenceRequest) []byte {
	var e jx.Encoder
	e.ObjStart()

	e.FieldStart("items")
	e.ArrStart()
	for _, item := range req.Items {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(item.ID)
		e.FieldStart("title")
		e.Str(item.Title)
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		e.FieldStart("unit_price")
		e.Num(jx.Num(item.UnitPrice.String()))
		e.FieldStart("currency_id")
		e.Str(item.CurrencyID)
		if item.PictureURL != "" {
			e.FieldStart("picture_url")
			e.Str(item.PictureURL)
		}
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("payer")
	e.ObjStart()
	e.FieldStart("name")
	e.Str(req.Payer.Name)
	e.FieldStart("email")
	e.Str(req.Payer.Email)
	if req.Payer.Phone != "" {
		e.FieldStart("phone")
		e.ObjStart()
		e.FieldStart("number")
		e.Str(req.Payer.Phone)
		e.ObjEnd()
	}
	e.ObjEnd()

	e.FieldStart("back_urls")
	e.ObjStart()
	e.FieldStart("success")
	e.Str(req.BackURLs.Success)
	e.FieldStart("failure")
	e.Str(req.BackURLs.Failure)
	e.FieldStart("pending")
	e.Str(req.BackURLs.Pending)
	e.ObjEnd()

	e.FieldStart("external_reference")
	e.Str(req.ExternalReference)
	e.FieldStart("notification_url")
	e.Str(req.NotificationURL)
	e.FieldStart("auto_return")
	e.Str("approved")

	e.ObjEnd()
	return e.Bytes()
}

func decodePreference(data []byte) (*payment.Preference, error) {
	var pref payment.Preference
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			pref.ID, err = d.Str()
		case "init_point":
			pref.InitPoint, err = d.Str()
		case "sandbox_init_point":
			pref.SandboxInitPoint, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return nil, errors.Wrap(err, "decode preference")
	}
	if pref.ID == "" {
		return nil, errors.New("decode preference: missing id")
	}
	return &pref, nil
}

func decodePayment(data []byte) (*payment.Info, error) {
	var info payment.Info
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			// Payment ids come back as JSON numbers.
			n, err := d.Num()
			if err != nil {
				return err
			}
			info.ID = n.String()
			return nil
		case "status":
			v, err := d.Str()
			if err != nil {
				return err
			}
			info.Status = v
			return nil
		case "transaction_amount":
			n, err := d.Num()
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(n.String())
			if err != nil {
				return errors.Wrap(err, "parse transaction_amount")
			}
			info.Amount = amount
			return nil
		case "external_reference":
			v, err := d.Str()
			if err != nil {
				return err
			}
			info.ExternalReference = v
			return nil
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode payment")
	}
	if info.ID == "" {
		return nil, errors.New("decode payment: missing id")
	}
	return &info, nil
}

func decodeErrorMessage(data []byte) string {
	var msg string
	d := jx.DecodeBytes(data)
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		if key != "message" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return err
		}
		msg = v
		return nil
	})
	return msg
}
