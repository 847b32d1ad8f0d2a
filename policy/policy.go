package policy

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

const (
	ModeAuto = "auto"
	ModeAsk  = "ask"
	ModeDeny = "deny"
)

// AskFunc approves a single step in ModeAsk. It may change p, e.g. switch it
// to ModeAuto once the operator approves everything.
type AskFunc func(ctx context.Context, step string, p *Policy) bool

// Policy decides which steps of a run may be invoked. Steps are named
// "organizer.step". A nil *Policy approves every step.
type Policy struct {
	// Mode is ModeAuto when empty.
	Mode string
	// AllowList, when not empty, names the only steps that may run.
	AllowList []string
	BlockList []string
	Ask       AskFunc
}

// Config is the declarative form of a Policy, as found under `policy:` in
// an organizer config file.
type Config struct {
	Mode  string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	Allow []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	Block []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// Validate rejects unknown modes.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch strings.ToLower(c.Mode) {
	case "", ModeAuto, ModeAsk, ModeDeny:
		return nil
	}
	return fmt.Errorf("policy.mode %q is not one of auto, ask, deny", c.Mode)
}

// Policy builds a policy from c; ask needs an AskFunc set by the caller. A
// nil or empty config yields nil.
func (c *Config) Policy() *Policy {
	if c == nil || (c.Mode == "" && len(c.Allow) == 0 && len(c.Block) == 0) {
		return nil
	}
	return &Policy{
		Mode:      strings.ToLower(c.Mode),
		AllowList: slices.Clone(c.Allow),
		BlockList: slices.Clone(c.Block),
	}
}

func matches(list []string, step string) bool {
	return slices.ContainsFunc(list, func(candidate string) bool {
		return strings.EqualFold(candidate, step)
	})
}

// IsAllowed applies the block list, then the allow list, ignoring case.
func (p *Policy) IsAllowed(step string) bool {
	switch {
	case p == nil:
		return true
	case matches(p.BlockList, step):
		return false
	case len(p.AllowList) > 0:
		return matches(p.AllowList, step)
	}
	return true
}

// Approve reports whether step may run. Lists are consulted before the
// mode, and ModeAsk without an AskFunc refuses.
func (p *Policy) Approve(ctx context.Context, step string) bool {
	if !p.IsAllowed(step) {
		return false
	}
	if p == nil {
		return true
	}
	switch strings.ToLower(p.Mode) {
	case ModeDeny:
		return false
	case ModeAsk:
		return p.Ask != nil && p.Ask(ctx, step, p)
	}
	return true
}

type contextKey struct{}

// WithPolicy returns a context carrying p.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the policy carried by ctx, or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(contextKey{}).(*Policy)
	return p
}
