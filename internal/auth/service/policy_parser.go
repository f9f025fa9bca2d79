// Package service provides policy parsing and certificate identity resolution.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	authDomain "github.com/allisson/vault/internal/auth/domain"
	apperrors "github.com/allisson/vault/internal/errors"
)

// PolicyFormat identifies the encoding of a policy source.
type PolicyFormat string

const (
	// PolicyFormatJSON is the default format.
	PolicyFormatJSON PolicyFormat = "json"

	// PolicyFormatYAML is selected for .yaml and .yml files.
	PolicyFormatYAML PolicyFormat = "yaml"
)

// FormatFromPath picks the policy format from a file extension.
func FormatFromPath(path string) PolicyFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return PolicyFormatYAML
	default:
		return PolicyFormatJSON
	}
}

// policyFile is the wrapped document form: {"policies": [...]}.
type policyFile struct {
	Policies []authDomain.PolicyDocument `json:"policies" yaml:"policies"`
}

// ParsePolicies decodes a policy source. The document is either a list of policies or an
// object with a "policies" list. Empty input yields no policies.
func ParsePolicies(data []byte, format PolicyFormat) ([]authDomain.PolicyDocument, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var (
		docs []authDomain.PolicyDocument
		err  error
	)
	switch format {
	case PolicyFormatYAML:
		docs, err = parseYAML(trimmed)
	case PolicyFormatJSON, "":
		docs, err = parseJSON(trimmed)
	default:
		return nil, fmt.Errorf("%w: unknown policy format %q", authDomain.ErrInvalidPolicy, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authDomain.ErrInvalidPolicy, err)
	}
	return docs, nil
}

func parseJSON(data []byte) ([]authDomain.PolicyDocument, error) {
	if data[0] == '[' {
		var docs []authDomain.PolicyDocument
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	}

	var file policyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file.Policies, nil
}

func parseYAML(data []byte) ([]authDomain.PolicyDocument, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var docs []authDomain.PolicyDocument
		if err := root.Decode(&docs); err != nil {
			return nil, err
		}
		return docs, nil
	}

	var file policyFile
	if err := root.Decode(&file); err != nil {
		return nil, err
	}
	return file.Policies, nil
}

// LoadPolicyFile reads and compiles the policy file at path. A missing file yields an empty
// set, which denies every request.
func LoadPolicyFile(path string) (*authDomain.PolicySet, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided policy path
	if err != nil {
		if os.IsNotExist(err) {
			return authDomain.NewPolicySet(nil)
		}
		return nil, apperrors.Wrap(err, "failed to read policy file")
	}

	docs, err := ParsePolicies(data, FormatFromPath(path))
	if err != nil {
		return nil, apperrors.Wrapf(err, "policy file %s", path)
	}

	set, err := authDomain.NewPolicySet(docs)
	if err != nil {
		return nil, apperrors.Wrapf(err, "policy file %s", path)
	}
	return set, nil
}
