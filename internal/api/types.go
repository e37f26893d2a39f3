package api

import (
	"time"

	"github.com/powerfit/powerfit-api/internal/domain/order"
	"github.com/powerfit/powerfit-api/internal/domain/payment"
	"github.com/powerfit/powerfit-api/internal/domain/product"
	"github.com/powerfit/powerfit-api/internal/domain/promo"
	"github.com/powerfit/powerfit-api/internal/domain/user"
)

// Money is rendered as a fixed two-decimal string, e.g. "105.00".

type productResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Category  string `json:"category"`
	Image     string `json:"image"`
	Inventory int    `json:"inventory"`
}

func mapProduct(p product.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price.StringFixed(2),
		Category:  p.Category,
		Image:     p.Image,
		Inventory: p.Inventory,
	}
}

type filterResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	SortOrder int    `json:"sort_order"`
}

type validateCouponRequest struct {
	Code     string `json:"code"`
	Subtotal string `json:"subtotal"`
}

type validateCouponResponse struct {
	Valid    bool   `json:"valid"`
	Discount string `json:"discount,omitempty"`
	Message  string `json:"message,omitempty"`
}

type checkoutRequest struct {
	UserID        string             `json:"user_id"`
	AddressID     string             `json:"address_id"`
	Items         []checkoutItemBody `json:"items"`
	CouponCode    string             `json:"coupon_code,omitempty"`
	PaymentMethod string             `json:"payment_method"`
}

type checkoutItemBody struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type checkoutResponse struct {
	Order   orderResponse    `json:"order"`
	Payment *paymentRedirect `json:"payment,omitempty"`
}

type paymentRedirect struct {
	PreferenceID     string `json:"preference_id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point,omitempty"`
}

func mapPreference(p *payment.Preference) *paymentRedirect {
	if p == nil {
		return nil
	}
	return &paymentRedirect{
		PreferenceID:     p.ID,
		InitPoint:        p.InitPoint,
		SandboxInitPoint: p.SandboxInitPoint,
	}
}

type orderResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	Status        string              `json:"status"`
	Fulfillment   string              `json:"fulfillment_status"`
	PaymentMethod string              `json:"payment_method"`
	CouponCode    string              `json:"coupon_code,omitempty"`
	Subtotal      string              `json:"subtotal"`
	Shipping      string              `json:"shipping"`
	Discount      string              `json:"discount"`
	Total         string              `json:"total"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Items         []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

func mapOrder(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemResponse{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Image:     item.ProductImage,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
		}
	}
	return orderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		Fulfillment:   string(o.Fulfillment),
		PaymentMethod: o.PaymentMethod,
		CouponCode:    o.CouponCode,
		Subtotal:      o.Subtotal.StringFixed(2),
		Shipping:      o.Shipping.StringFixed(2),
		Discount:      o.Discount.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Items:         items,
	}
}

type addressResponse struct {
	ID           string `json:"id"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
}

func mapAddress(a *user.Address) *addressResponse {
	if a == nil {
		return nil
	}
	return &addressResponse{
		ID:           a.ID,
		Street:       a.Street,
		Number:       a.Number,
		Complement:   a.Complement,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		State:        a.State,
		ZipCode:      a.ZipCode,
	}
}

type transactionResponse struct {
	PaymentID string    `json:"payment_id"`
	Status    string    `json:"status"`
	Amount    string    `json:"amount"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

func mapTransactions(txs []payment.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(txs))
	for i, t := range txs {
		out[i] = transactionResponse{
			PaymentID: t.PaymentID,
			Status:    t.Status,
			Amount:    t.Amount.StringFixed(2),
			Provider:  t.Provider,
			CreatedAt: t.CreatedAt,
		}
	}
	return out
}

type buyerResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func mapBuyer(u *user.User) *buyerResponse {
	if u == nil {
		return nil
	}
	return &buyerResponse{Name: u.Name, Email: u.Email}
}

type orderDetailResponse struct {
	orderResponse
	Buyer        *buyerResponse        `json:"buyer,omitempty"`
	Address      *addressResponse      `json:"address,omitempty"`
	Transactions []transactionResponse `json:"transactions"`
}

type promotionBody struct {
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue string    `json:"discount_value"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	Active        bool      `json:"is_active"`
	MinPurchase   string    `json:"min_purchase"`
}

type promotionResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue string    `json:"discount_value"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	Active        bool      `json:"is_active"`
	MinPurchase   string    `json:"min_purchase"`
	CreatedAt     time.Time `json:"created_at"`
}

func mapPromotion(p promo.Promotion) promotionResponse {
	return promotionResponse{
		ID:            p.ID,
		Name:          p.Name,
		Code:          p.Code,
		DiscountType:  string(p.DiscountType),
		DiscountValue: p.DiscountValue.StringFixed(2),
		StartsAt:      p.StartsAt,
		EndsAt:        p.EndsAt,
		Active:        p.Active,
		MinPurchase:   p.MinPurchase.StringFixed(2),
		CreatedAt:     p.CreatedAt,
	}
}

type fulfillmentBody struct {
	Status string `json:"status"`
}

type swapFiltersBody struct {
	FilterA string `json:"filter_a"`
	FilterB string `json:"filter_b"`
}

type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type webhookResponse struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}
