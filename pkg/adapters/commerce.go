package adapters

import (
	"github.com/de-tools/ops-atlas/pkg/models/api"
	"github.com/de-tools/ops-atlas/pkg/models/store"
)

func MapOrdersStoreToApi(orders []store.Order) api.OrdersResponse {
	if orders == nil {
		orders = []store.Order{}
	}
	return api.OrdersResponse{Orders: orders}
}

func MapProductsStoreToApi(products []store.Product) api.ProductsResponse {
	if products == nil {
		products = []store.Product{}
	}
	return api.ProductsResponse{Products: products}
}

func MapInvoicesStoreToApi(invoices []store.Invoice) api.InvoicesResponse {
	if invoices == nil {
		invoices = []store.Invoice{}
	}
	return api.InvoicesResponse{Invoices: invoices}
}

func MapAccountsStoreToApi(accounts []store.Account) api.AccountsResponse {
	if accounts == nil {
		accounts = []store.Account{}
	}
	return api.AccountsResponse{Accounts: accounts}
}
