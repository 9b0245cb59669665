package models

// OrderLineRequest is one item of a storefront cart as submitted by the client.
type OrderLineRequest struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"qty"`
}

// OrderRequest is the body of POST /api/order.
type OrderRequest struct {
	InitData string             `json:"initData"`
	Items    []OrderLineRequest `json:"items"`
}

// OrderLine is a validated and priced cart item.
type OrderLine struct {
	ProductID string
	Quantity  int
	UnitPrice int64
	Cost      int64
}

// OrderSummary is derived per request and discarded after dispatch.
type OrderSummary struct {
	Reference string
	Identity  Identity
	Lines     []OrderLine
	Total     int64
	UserText  string
	AdminText string
}
