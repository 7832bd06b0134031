package types

// Balance is the point-in-time balance of a single account
type Balance struct {
	Available Amount `json:"available"`
	Current   Amount `json:"current"`
	Currency  string `json:"currency"`
}

func (b *Balance) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}

	var out Balance
	if err := field(obj, "available", true, &out.Available); err != nil {
		return err
	}
	if err := field(obj, "current", true, &out.Current); err != nil {
		return err
	}
	if err := requiredString(obj, "currency", &out.Currency); err != nil {
		return err
	}

	*b = out
	return nil
}

// BalanceResponse is the success body of the account balance operation
type BalanceResponse struct {
	Balance Balance `json:"balance"`
}

func (r *BalanceResponse) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	return field(obj, "balance", true, &r.Balance)
}
