package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"zkid/pkg/secrets"
)

// NewSecretCmd prints a random secret for JWT_SIGNING_KEY or VERIFIER_API_KEY.
func NewSecretCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Generate a random signing key or API key",
		Example: `  export JWT_SIGNING_KEY=$(zkidctl secret)
  export VERIFIER_API_KEY=$(zkidctl secret --bytes 48)`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := secrets.Generate(size)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrUsage, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}

	cmd.Flags().IntVar(&size, "bytes", secrets.DefaultSize, "random bytes before encoding")
	return cmd
}
