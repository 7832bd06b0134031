package types

import (
	"encoding/json"
	"fmt"
)

// Transaction is a single posted or pending movement on an account. The sign convention
// of Amount is whatever the upstream reports.
type Transaction struct {
	ID           string  `json:"id"`
	AccountID    int64   `json:"account_id"`
	Date         string  `json:"date"`
	Amount       Amount  `json:"amount"`
	Currency     string  `json:"currency"`
	Description  string  `json:"description"`
	MerchantName *string `json:"merchant_name,omitempty"`
	Category     *string `json:"category,omitempty"`
	Pending      *bool   `json:"pending,omitempty"`
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}

	var out Transaction
	if err := requiredString(obj, "id", &out.ID); err != nil {
		return err
	}
	if err := intField(obj, "account_id", &out.AccountID); err != nil {
		return err
	}
	if err := requiredString(obj, "date", &out.Date); err != nil {
		return err
	}
	if err := field(obj, "amount", true, &out.Amount); err != nil {
		return err
	}
	if err := requiredString(obj, "currency", &out.Currency); err != nil {
		return err
	}
	if err := requiredString(obj, "description", &out.Description); err != nil {
		return err
	}
	if err := stringField(obj, "merchant_name", false, &out.MerchantName); err != nil {
		return err
	}
	if err := stringField(obj, "category", false, &out.Category); err != nil {
		return err
	}
	if err := field(obj, "pending", false, &out.Pending); err != nil {
		return err
	}

	*t = out
	return nil
}

// TransactionsResponse is the success body of the account transactions operation
type TransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

func (r *TransactionsResponse) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	raw, ok := obj["transactions"]
	if !ok || isNull(raw) {
		return &ValidationError{Path: "transactions", Reason: "required"}
	}
	items, err := decodeArray(raw)
	if err != nil {
		return atPath("transactions", err)
	}

	transactions := make([]Transaction, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &transactions[i]); err != nil {
			return atPath(fmt.Sprintf("transactions[%d]", i), err)
		}
	}

	r.Transactions = transactions
	return nil
}
