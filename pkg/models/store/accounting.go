package store

type Contact struct {
	Name string `json:"Name"`
}

type Invoice struct {
	InvoiceID     string  `json:"InvoiceID"`
	InvoiceNumber string  `json:"InvoiceNumber"`
	Type          string  `json:"Type"`
	Status        string  `json:"Status"`
	Contact       Contact `json:"Contact"`
	DateString    string  `json:"DateString"`
	DueDateString string  `json:"DueDateString"`
	Total         float64 `json:"Total"`
	AmountDue     float64 `json:"AmountDue"`
	AmountPaid    float64 `json:"AmountPaid"`
}

type Account struct {
	AccountID string   `json:"AccountID"`
	Code      string   `json:"Code"`
	Name      string   `json:"Name"`
	Type      string   `json:"Type"`
	Status    string   `json:"Status"`
	Balance   *float64 `json:"Balance,omitempty"`
}

type InvoicesResponse struct {
	Invoices []Invoice `json:"Invoices"`
}

type AccountsResponse struct {
	Accounts []Account `json:"Accounts"`
}
