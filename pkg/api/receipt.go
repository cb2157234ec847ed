package api

import "github.com/shopspring/decimal"

// Item is one line of a receipt.
type Item struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int32           `json:"quantity"`
}

// Split is what one group member owes on a receipt.
type Split struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	AmountOwed     decimal.Decimal `json:"amountOwed"`
	PercentageOwed decimal.Decimal `json:"percentageOwed"`
	AmountPaid     decimal.Decimal `json:"amountPaid"`
	IsCustom       bool            `json:"isCustom"`
	Status         string          `json:"status"`
	PaidAt         int64           `json:"paidAt,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// Receipt is a personal or group receipt. Exactly one of UserID and GroupID
// is set.
type Receipt struct {
	ID            string              `json:"id"`
	UserID        string              `json:"userId,omitempty"`
	GroupID       string              `json:"groupId,omitempty"`
	Merchant      string              `json:"merchant"`
	TotalAmount   decimal.Decimal     `json:"totalAmount"`
	Currency      string              `json:"currency"`
	Date          string              `json:"date"`
	PaymentMethod string              `json:"paymentMethod,omitempty"`
	Tax           decimal.NullDecimal `json:"tax"`
	Tip           decimal.NullDecimal `json:"tip"`
	TaxLast       bool                `json:"taxLast"`
	ImageURL      string              `json:"imageUrl,omitempty"`
	FolderID      string              `json:"folderId,omitempty"`
	FolderName    string              `json:"folderName,omitempty"`
	Color         string              `json:"color,omitempty"`
	Items         []*Item             `json:"items"`
	Splits        []*Split            `json:"splits,omitempty"`
	CreatedAt     int64               `json:"createdAt"`
}

// CreateReceiptRequest creates a personal receipt, or a group receipt when
// GroupID is set.
type CreateReceiptRequest struct {
	GroupID       string              `json:"groupId,omitempty"`
	Merchant      string              `json:"merchant"`
	TotalAmount   decimal.Decimal     `json:"totalAmount"`
	Currency      string              `json:"currency"`
	Date          string              `json:"date"`
	PaymentMethod string              `json:"paymentMethod,omitempty"`
	Tax           decimal.NullDecimal `json:"tax"`
	Tip           decimal.NullDecimal `json:"tip"`
	TaxLast       bool                `json:"taxLast"`
	ImageURL      string              `json:"imageUrl,omitempty"`
	FolderID      string              `json:"folderId,omitempty"`
	Color         string              `json:"color,omitempty"`
	Items         []*Item             `json:"items"`
}

type CreateReceiptResponse struct {
	Receipt *Receipt `json:"receipt"`
}

type GetReceiptRequest struct {
	ReceiptID string `json:"receiptId"`
}

type GetReceiptResponse struct {
	Receipt *Receipt `json:"receipt"`
}

// UpdateReceiptRequest changes only the fields that are present. A present
// Items list replaces all items. ClearTax and ClearTip remove those amounts.
type UpdateReceiptRequest struct {
	ReceiptID     string           `json:"receiptId"`
	Merchant      *string          `json:"merchant,omitempty"`
	TotalAmount   *decimal.Decimal `json:"totalAmount,omitempty"`
	Currency      *string          `json:"currency,omitempty"`
	Date          *string          `json:"date,omitempty"`
	PaymentMethod *string          `json:"paymentMethod,omitempty"`
	Tax           *decimal.Decimal `json:"tax,omitempty"`
	ClearTax      bool             `json:"clearTax,omitempty"`
	Tip           *decimal.Decimal `json:"tip,omitempty"`
	ClearTip      bool             `json:"clearTip,omitempty"`
	TaxLast       *bool            `json:"taxLast,omitempty"`
	ImageURL      *string          `json:"imageUrl,omitempty"`
	FolderID      *string          `json:"folderId,omitempty"`
	Color         *string          `json:"color,omitempty"`
	Items         *[]*Item         `json:"items,omitempty"`
}

type UpdateReceiptResponse struct {
	Receipt *Receipt `json:"receipt"`
}

type DeleteReceiptRequest struct {
	ReceiptID string `json:"receiptId"`
}

type DeleteReceiptResponse struct{}

// ListReceiptsRequest lists the caller's personal receipts. Since and Until
// are inclusive dates.
type ListReceiptsRequest struct {
	FolderID string `json:"folderId,omitempty"`
	Since    string `json:"since,omitempty"`
	Until    string `json:"until,omitempty"`
	Limit    int32  `json:"limit,omitempty"`
}

type ListReceiptsResponse struct {
	Receipts []*Receipt `json:"receipts"`
}

type ListGroupReceiptsRequest struct {
	GroupID string `json:"groupId"`
}

type ListGroupReceiptsResponse struct {
	Receipts []*Receipt `json:"receipts"`
}
