package dto

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Kind  string `json:"kind"`
}

type ProductResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	PriceUSD    string `json:"price_usd,omitempty"` // display only, from the rate cache
}

type CartAddRequest struct {
	ProductID string `json:"product_id"`
}

type CartResponse struct {
	Items    []ProductResponse `json:"items"`
	Total    int64             `json:"total"`
	Currency string            `json:"currency"`
	TotalUSD string            `json:"total_usd,omitempty"`
}

type CheckoutResponse struct {
	BuyOrder    string `json:"buy_order"`
	RedirectURL string `json:"redirect_url"`
}

type ReceiptResponse struct {
	BuyOrder   string   `json:"buy_order"`
	Amount     int64    `json:"amount"`
	ProductIDs []string `json:"product_ids"`
}

type PurchaseResponse struct {
	ProductID string `json:"product_id"`
	BuyOrder  string `json:"buy_order"`
	Email     string `json:"email,omitempty"` // admin report only
	Amount    int64  `json:"amount"`
	CreatedAt string `json:"created_at"`
}
