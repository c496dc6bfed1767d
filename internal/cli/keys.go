package cli

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"zkid/internal/verifier/schnorr"
	id "zkid/pkg/domain"
)

// keygenOutput is base64 in JSON. The secret never leaves the holder.
type keygenOutput struct {
	Secret          []byte `json:"secret"`
	VerificationKey []byte `json:"verification_key"`
}

// mintBody matches the body of POST /admin/credentials.
type mintBody struct {
	Subject         string `json:"subject,omitempty"`
	Expiration      uint64 `json:"expiration,omitempty"`
	VerificationKey []byte `json:"verification_key"`
	Proof           []byte `json:"proof"`
}

// NewKeygenCmd draws a fresh Schnorr key pair.
func NewKeygenCmd() *cobra.Command {
	var userID, proofContext string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a Schnorr key pair bound to a user id and context",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := id.ParsePrincipal(userID); err != nil {
				return fmt.Errorf("%w: --user-id: %v", ErrUsage, err)
			}
			kp, err := schnorr.GenerateKey(rand.Reader, userID, proofContext)
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			vk, err := kp.Key.Marshal()
			if err != nil {
				return fmt.Errorf("encode verification key: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), keygenOutput{Secret: kp.Secret, VerificationKey: vk})
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "identity the key is bound to (required)")
	cmd.Flags().StringVar(&proofContext, "context", "zkid-issuance", "domain separation context")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

// NewProveCmd proves knowledge of a secret and prints a mint request body.
func NewProveCmd() *cobra.Command {
	var secretB64, vkB64, subject, expiration string

	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Prove knowledge of a secret for a verification key",
		Example: `  zkidctl keygen --user-id alice > alice.json
  zkidctl prove --secret "$(jq -r .secret alice.json)" \
    --verification-key "$(jq -r .verification_key alice.json)" \
    --subject alice --expiration 1767225600`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := base64.StdEncoding.DecodeString(secretB64)
			if err != nil {
				return fmt.Errorf("%w: --secret must be base64: %v", ErrUsage, err)
			}
			rawVK, err := base64.StdEncoding.DecodeString(vkB64)
			if err != nil {
				return fmt.Errorf("%w: --verification-key must be base64: %v", ErrUsage, err)
			}
			vk, _, reason := schnorr.ParseVerificationKey(rawVK)
			if reason != "" {
				return fmt.Errorf("%w: --verification-key: %s", ErrUsage, reason)
			}

			body := mintBody{Subject: subject, VerificationKey: rawVK}
			if expiration != "" {
				body.Expiration, err = strconv.ParseUint(expiration, 10, 64)
				if err != nil {
					return fmt.Errorf("%w: --expiration must be unix seconds: %v", ErrUsage, err)
				}
			}

			body.Proof, err = schnorr.Prove(secret, vk, rand.Reader)
			if err != nil {
				return fmt.Errorf("prove: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), body)
		},
	}

	cmd.Flags().StringVar(&secretB64, "secret", "", "base64 secret from keygen (required)")
	cmd.Flags().StringVar(&vkB64, "verification-key", "", "base64 verification key from keygen (required)")
	cmd.Flags().StringVar(&subject, "subject", "", "credential subject to include in the body")
	cmd.Flags().StringVar(&expiration, "expiration", "", "expiration in unix seconds; empty or 0 never expires")
	_ = cmd.MarkFlagRequired("secret")
	_ = cmd.MarkFlagRequired("verification-key")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
