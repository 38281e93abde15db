package store

type LineItem struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type Order struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	TotalPrice        string     `json:"total_price"`
	FinancialStatus   string     `json:"financial_status"`
	FulfillmentStatus *string    `json:"fulfillment_status"`
	CreatedAt         string     `json:"created_at"`
	LineItems         []LineItem `json:"line_items"`
}

type Variant struct {
	ID                int64  `json:"id"`
	Price             string `json:"price"`
	InventoryQuantity int    `json:"inventory_quantity"`
	SKU               string `json:"sku"`
}

type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Handle   string    `json:"handle"`
	Status   string    `json:"status"`
	Variants []Variant `json:"variants"`
}

type OrdersResponse struct {
	Orders []Order `json:"orders"`
}

type ProductsResponse struct {
	Products []Product `json:"products"`
}

type CountResponse struct {
	Count int `json:"count"`
}
