package api

import "github.com/de-tools/ops-atlas/pkg/models/store"

type CountResponse struct {
	Count int `json:"count"`
}

type OrdersResponse struct {
	Orders []store.Order `json:"orders"`
}

type ProductsResponse struct {
	Products []store.Product `json:"products"`
}

type RevenueResponse struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type InvoicesResponse struct {
	Invoices []store.Invoice `json:"invoices"`
}

type AccountsResponse struct {
	Accounts []store.Account `json:"accounts"`
}
