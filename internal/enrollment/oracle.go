// Package enrollment answers whether an account is part of a named experiment.
//
// Each experiment is configured with an explicit list of accounts and a rollout
// percentage. Accounts outside the list are placed in one of 100 buckets by hashing
// the experiment name with the account ID, so an account's bucket is stable across
// restarts and independent between experiments.
package enrollment

import (
	"context"
	"log/slog"

	"github.com/cespare/xxhash/v2"

	id "backupauth/pkg/domain"
	dErrors "backupauth/pkg/domain-errors"
)

// Rule configures one experiment.
type Rule struct {
	Accounts []id.AccountID
	// Percent of all accounts enrolled, 0..100.
	Percent int
}

// Oracle is a configuration-backed enrollment oracle. It is immutable after
// construction and safe for concurrent use.
type Oracle struct {
	experiments map[string]experiment
	logger      *slog.Logger
}

type experiment struct {
	accounts map[id.AccountID]struct{}
	percent  uint64
}

type Option func(*Oracle)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Oracle) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New builds an oracle from rules keyed by experiment name.
func New(rules map[string]Rule, opts ...Option) (*Oracle, error) {
	o := &Oracle{
		experiments: make(map[string]experiment, len(rules)),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	for name, rule := range rules {
		if name == "" {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "experiment name cannot be empty")
		}
		if rule.Percent < 0 || rule.Percent > 100 {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "enrollment percent must be between 0 and 100 for "+name)
		}
		exp := experiment{
			accounts: make(map[id.AccountID]struct{}, len(rule.Accounts)),
			percent:  uint64(rule.Percent),
		}
		for _, accountID := range rule.Accounts {
			exp.accounts[accountID] = struct{}{}
		}
		o.experiments[name] = exp
	}
	return o, nil
}

// ParseAccounts converts configured account ID strings, rejecting malformed entries.
func ParseAccounts(raw []string) ([]id.AccountID, error) {
	accounts := make([]id.AccountID, 0, len(raw))
	for _, s := range raw {
		accountID, err := id.ParseAccountID(s)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, accountID)
	}
	return accounts, nil
}

// IsEnrolled reports whether accountID takes part in the experiment. Unknown
// experiments enroll nobody.
func (o *Oracle) IsEnrolled(ctx context.Context, accountID id.AccountID, experimentName string) bool {
	exp, ok := o.experiments[experimentName]
	if !ok {
		o.logger.DebugContext(ctx, "enrollment check for unknown experiment", "experiment", experimentName)
		return false
	}
	if _, listed := exp.accounts[accountID]; listed {
		return true
	}
	if exp.percent == 0 {
		return false
	}
	return Bucket(experimentName, accountID) < exp.percent
}

// Bucket returns the account's rollout bucket for an experiment, in [0, 100).
func Bucket(experimentName string, accountID id.AccountID) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(experimentName)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(accountID[:])
	return d.Sum64() % 100
}
