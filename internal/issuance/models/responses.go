package models

// IssuanceResponse is returned by a successful mint.
type IssuanceResponse struct {
	TokenID    uint64 `json:"token_id"`
	Subject    string `json:"subject"`
	Expiration uint64 `json:"expiration"`
	ProofID    string `json:"proof_id"`
}

// SettingResponse is one orchestrator setting.
type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func ToIssuanceResponse(r *IssuanceResult) IssuanceResponse {
	return IssuanceResponse{
		TokenID:    uint64(r.TokenID),
		Subject:    r.Subject.String(),
		Expiration: r.Expiration,
		ProofID:    r.ProofID.String(),
	}
}
