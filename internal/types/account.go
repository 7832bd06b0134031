package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Provider is the data aggregator an account is linked through
type Provider string

const (
	ProviderGoCardless Provider = "gocardless"
	ProviderQuiltt     Provider = "quiltt"
	ProviderFinverse   Provider = "finverse"
	ProviderPluggy     Provider = "pluggy"
	ProviderLunchMoney Provider = "lunchmoney"
	ProviderSimpleFIN  Provider = "simplefin"
	ProviderStripe     Provider = "stripe"
	ProviderAkahu      Provider = "akahu"
)

// Providers lists every supported provider
var Providers = []Provider{
	ProviderGoCardless,
	ProviderQuiltt,
	ProviderFinverse,
	ProviderPluggy,
	ProviderLunchMoney,
	ProviderSimpleFIN,
	ProviderStripe,
	ProviderAkahu,
}

func (p Provider) Valid() bool {
	return slices.Contains(Providers, p)
}

func (p *Provider) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return atPath("", err)
	}
	if !Provider(s).Valid() {
		return &ValidationError{Reason: fmt.Sprintf("unknown provider %q, expected one of %s", s, joinEnum(Providers))}
	}
	*p = Provider(s)
	return nil
}

// AccountStatus is the connection state of an account
type AccountStatus string

const (
	AccountStatusActive       AccountStatus = "ACTIVE"
	AccountStatusDisconnected AccountStatus = "DISCONNECTED"
	AccountStatusError        AccountStatus = "ERROR"
)

var accountStatuses = []AccountStatus{
	AccountStatusActive,
	AccountStatusDisconnected,
	AccountStatusError,
}

func (s AccountStatus) Valid() bool {
	return slices.Contains(accountStatuses, s)
}

func (s *AccountStatus) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return atPath("", err)
	}
	if !AccountStatus(v).Valid() {
		return &ValidationError{Reason: fmt.Sprintf("unknown status %q, expected one of %s", v, joinEnum(accountStatuses))}
	}
	*s = AccountStatus(v)
	return nil
}

// Account is a bank account connected through one of the supported providers.
// Optional members are pointers so that an absent member stays absent when re-encoded.
type Account struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	InstitutionName string         `json:"institution_name"`
	InstitutionLogo string         `json:"institution_logo"`
	Provider        Provider       `json:"provider"`
	Currency        *string        `json:"currency,omitempty"`
	Status          *AccountStatus `json:"status,omitempty"`
}

func (a *Account) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}

	var out Account
	if err := intField(obj, "id", &out.ID); err != nil {
		return err
	}
	if err := requiredString(obj, "name", &out.Name); err != nil {
		return err
	}
	if err := requiredString(obj, "institution_name", &out.InstitutionName); err != nil {
		return err
	}
	if err := requiredString(obj, "institution_logo", &out.InstitutionLogo); err != nil {
		return err
	}
	if err := field(obj, "provider", true, &out.Provider); err != nil {
		return err
	}
	if err := stringField(obj, "currency", false, &out.Currency); err != nil {
		return err
	}
	if err := field(obj, "status", false, &out.Status); err != nil {
		return err
	}

	*a = out
	return nil
}

// AccountsResponse is the success body of the list accounts operation
type AccountsResponse struct {
	Accounts []Account `json:"accounts"`
}

func (r *AccountsResponse) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	raw, ok := obj["accounts"]
	if !ok || isNull(raw) {
		return &ValidationError{Path: "accounts", Reason: "required"}
	}
	items, err := decodeArray(raw)
	if err != nil {
		return atPath("accounts", err)
	}

	accounts := make([]Account, len(items))
	seen := make(map[int64]int, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &accounts[i]); err != nil {
			return atPath(fmt.Sprintf("accounts[%d]", i), err)
		}
		if prev, dup := seen[accounts[i].ID]; dup {
			return &ValidationError{
				Path:   fmt.Sprintf("accounts[%d].id", i),
				Reason: fmt.Sprintf("duplicate account id %d (also at accounts[%d])", accounts[i].ID, prev),
			}
		}
		seen[accounts[i].ID] = i
	}

	r.Accounts = accounts
	return nil
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
