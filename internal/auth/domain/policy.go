package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// PolicyDocument is the serialized form of one identity's policy.
type PolicyDocument struct {
	Identity string `json:"identity,omitempty" yaml:"identity,omitempty"`
	// Fingerprint is accepted as an alias of Identity.
	Fingerprint string   `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	Read        []string `json:"read"                  yaml:"read"`
	Write       []string `json:"write"                 yaml:"write"`
}

// Name returns the identity the document applies to.
func (d PolicyDocument) Name() string {
	if id := strings.TrimSpace(d.Identity); id != "" {
		return id
	}
	return strings.TrimSpace(d.Fingerprint)
}

// Validate checks that the document names exactly one identity.
func (d PolicyDocument) Validate() error {
	identity := strings.TrimSpace(d.Identity)
	fingerprint := strings.TrimSpace(d.Fingerprint)

	switch {
	case identity == "" && fingerprint == "":
		return fmt.Errorf("%w: policy has no identity", ErrInvalidPolicy)
	case identity != "" && fingerprint != "" && identity != fingerprint:
		return fmt.Errorf(
			"%w: policy names both identity %q and fingerprint %q",
			ErrInvalidPolicy,
			identity,
			fingerprint,
		)
	}
	return nil
}

// Pattern is a compiled path glob. '*' matches any run of characters, including '/' and
// the empty string. Every other character matches itself and the whole path must match.
type Pattern struct {
	source string
	re     *regexp.Regexp
}

// CompilePattern compiles a path glob.
func CompilePattern(glob string) (*Pattern, error) {
	if glob == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPolicy)
	}

	parts := strings.Split(glob, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}

	re, err := regexp.Compile(`\A(?s:` + strings.Join(parts, `.*`) + `)\z`)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidPolicy, glob, err)
	}
	return &Pattern{source: glob, re: re}, nil
}

// Match reports whether path matches the whole pattern.
func (p *Pattern) Match(path string) bool {
	return p.re.MatchString(path)
}

// String returns the original glob.
func (p *Pattern) String() string {
	return p.source
}

// Policy is the compiled form of one identity's documents.
type Policy struct {
	Identity string
	read     []*Pattern
	write    []*Pattern
}

func (p *Policy) patterns(capability Capability) []*Pattern {
	switch capability {
	case ReadCapability:
		return p.read
	case WriteCapability:
		return p.write
	default:
		return nil
	}
}

// Allows reports whether any pattern of the capability's set matches path.
func (p *Policy) Allows(capability Capability, path string) bool {
	for _, pattern := range p.patterns(capability) {
		if pattern.Match(path) {
			return true
		}
	}
	return false
}

// Patterns returns the globs granted for capability.
func (p *Policy) Patterns(capability Capability) []string {
	patterns := p.patterns(capability)
	out := make([]string, len(patterns))
	for i, pattern := range patterns {
		out[i] = pattern.String()
	}
	return out
}

func (p *Policy) add(capability Capability, glob string) error {
	for _, existing := range p.patterns(capability) {
		if existing.source == glob {
			return nil
		}
	}

	pattern, err := CompilePattern(glob)
	if err != nil {
		return err
	}

	switch capability {
	case ReadCapability:
		p.read = append(p.read, pattern)
	case WriteCapability:
		p.write = append(p.write, pattern)
	}
	return nil
}

// PolicySet maps identities to their compiled policy. The zero value denies everything.
type PolicySet struct {
	policies map[string]*Policy
}

// NewPolicySet compiles documents into a PolicySet. Documents naming the same identity are
// merged and repeated patterns are kept once.
func NewPolicySet(docs []PolicyDocument) (*PolicySet, error) {
	set := &PolicySet{policies: make(map[string]*Policy, len(docs))}

	for i, doc := range docs {
		if err := doc.Validate(); err != nil {
			return nil, fmt.Errorf("policy #%d: %w", i+1, err)
		}

		identity := doc.Name()
		policy, ok := set.policies[identity]
		if !ok {
			policy = &Policy{Identity: identity}
			set.policies[identity] = policy
		}

		for _, glob := range doc.Read {
			if err := policy.add(ReadCapability, glob); err != nil {
				return nil, fmt.Errorf("policy #%d (%s): %w", i+1, identity, err)
			}
		}
		for _, glob := range doc.Write {
			if err := policy.add(WriteCapability, glob); err != nil {
				return nil, fmt.Errorf("policy #%d (%s): %w", i+1, identity, err)
			}
		}
	}

	return set, nil
}

// CanRead reports whether identity may read path.
func (s *PolicySet) CanRead(identity, path string) bool {
	return s.allows(identity, ReadCapability, path)
}

// CanWrite reports whether identity may write path.
func (s *PolicySet) CanWrite(identity, path string) bool {
	return s.allows(identity, WriteCapability, path)
}

func (s *PolicySet) allows(identity string, capability Capability, path string) bool {
	policy, ok := s.Get(identity)
	if !ok {
		return false
	}
	return policy.Allows(capability, path)
}

// Get returns the policy of identity.
func (s *PolicySet) Get(identity string) (*Policy, bool) {
	if s == nil || identity == "" {
		return nil, false
	}
	policy, ok := s.policies[identity]
	return policy, ok
}

// Identities returns the known identities, sorted.
func (s *PolicySet) Identities() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.policies))
	for identity := range s.policies {
		out = append(out, identity)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of known identities.
func (s *PolicySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.policies)
}
