package models

import "time"

// RegistryResponse describes the registry metadata and supply.
type RegistryResponse struct {
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	BaseURI     string    `json:"base_uri"`
	TotalSupply uint64    `json:"total_supply"`
	CreatedAt   time.Time `json:"created_at"`
}

// CredentialResponse is the full credential record.
type CredentialResponse struct {
	TokenID    uint64    `json:"token_id"`
	Owner      string    `json:"owner"`
	Expiration uint64    `json:"expiration"`
	Expired    bool      `json:"expired"`
	TokenURI   string    `json:"token_uri"`
	IssuedAt   time.Time `json:"issued_at"`
}

type ExpirationResponse struct {
	TokenID    uint64 `json:"token_id"`
	Expiration uint64 `json:"expiration"`
}

type ExpiredResponse struct {
	TokenID uint64 `json:"token_id"`
	Expired bool   `json:"expired"`
}

type OwnerResponse struct {
	TokenID uint64 `json:"token_id"`
	Owner   string `json:"owner"`
}

type TokenURIResponse struct {
	TokenID  uint64 `json:"token_id"`
	TokenURI string `json:"token_uri"`
}

type BalanceResponse struct {
	Owner   string `json:"owner"`
	Balance uint64 `json:"balance"`
}

type OwnedTokenResponse struct {
	Owner   string `json:"owner"`
	Index   uint64 `json:"index"`
	TokenID uint64 `json:"token_id"`
}

func ToRegistryResponse(r *Registry) RegistryResponse {
	return RegistryResponse{
		Owner:       r.Owner.String(),
		Name:        r.Name,
		Symbol:      r.Symbol,
		BaseURI:     r.BaseURI,
		TotalSupply: r.TotalSupply,
		CreatedAt:   r.CreatedAt,
	}
}
