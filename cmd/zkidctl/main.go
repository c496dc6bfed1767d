// zkidctl is the operator command-line tool for zkid.
//
// Usage:
//
//	zkidctl token --principal issuer@zkid
//	zkidctl keygen --user-id alice
//	zkidctl prove --secret ... --verification-key ... --subject alice
package main

import "zkid/internal/cli"

func main() {
	cli.Execute()
}
