// Package cli implements zkidctl, the operator tool for issuing bearer tokens
// and producing Schnorr keys and proofs for the issuance API.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ErrUsage marks invalid flags or arguments.
var ErrUsage = errors.New("usage error")

// NewRootCmd creates the root command for zkidctl.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zkidctl",
		Short: "zkidctl - operator tool for the zkid issuance service",
		Long: `zkidctl helps operators and integrators talk to zkid:
  token   signs a bearer token for a principal (admin routes)
  keygen  draws a Schnorr key pair bound to a user id and context
  prove   proves knowledge of a secret and prints a mint request body
  secret  generates a signing key or service API key`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewTokenCmd(), NewKeygenCmd(), NewProveCmd(), NewSecretCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
