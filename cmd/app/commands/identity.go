package commands

import (
	"fmt"

	authDomain "github.com/allisson/vault/internal/auth/domain"
	authService "github.com/allisson/vault/internal/auth/service"
)

// RunFingerprint prints the identity string of the PEM certificate at certPath.
func RunFingerprint(certPath string, io IOTuple) error {
	if certPath == "" {
		return fmt.Errorf("--cert is required")
	}

	fingerprint, err := authService.FingerprintFile(certPath)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(io.Writer, fingerprint)
	return err
}

// RunValidatePolicies compiles the policy file at path and prints a summary per identity.
// Any parse or validation error is returned unchanged so the exit status reflects it.
func RunValidatePolicies(path string, format string, io IOTuple) error {
	set, err := authService.LoadPolicyFile(path)
	if err != nil {
		return err
	}

	identities := set.Identities()

	if format == "json" {
		type summary struct {
			Identity string   `json:"identity"`
			Read     []string `json:"read"`
			Write    []string `json:"write"`
		}
		result := make([]summary, 0, len(identities))
		for _, identity := range identities {
			policy, _ := set.Get(identity)
			result = append(result, summary{
				Identity: identity,
				Read:     policy.Patterns(authDomain.ReadCapability),
				Write:    policy.Patterns(authDomain.WriteCapability),
			})
		}
		return outputJSON(result, io.Writer)
	}

	_, _ = fmt.Fprintf(io.Writer, "%s: %d identities\n", path, len(identities))
	for _, identity := range identities {
		policy, _ := set.Get(identity)
		_, _ = fmt.Fprintf(io.Writer, "  %s read=%v write=%v\n",
			identity,
			policy.Patterns(authDomain.ReadCapability),
			policy.Patterns(authDomain.WriteCapability),
		)
	}
	return nil
}
