// Package core implements the entitlement-reconciliation operations: trial
// activation, premium activation, debounced premium revalidation, and the
// entitlement-gated notification dispatch.
//
// Every decision reads the claims decoded from the presented token, never a
// server-side re-fetch: claims are exactly as fresh as the token's issue
// time, uniformly across all operations. The claim store is consulted only
// for fields tokens never carry (account creation time, email).
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PaulFidika/subkit/billing"
	"github.com/PaulFidika/subkit/claims"
	"github.com/PaulFidika/subkit/entitlements"
	"github.com/PaulFidika/subkit/identity"
	"github.com/PaulFidika/subkit/push"
)

const (
	// DefaultTrialDuration is how long a free trial runs past account creation.
	DefaultTrialDuration = 7 * 24 * time.Hour
	// DefaultRecheckInterval is the minimum gap between external premium
	// re-verifications for one account.
	DefaultRecheckInterval = 24 * time.Hour
)

// Revalidation skip reasons reported to the caller.
const (
	SkipNoPremiumClaim  = "no premium claim"
	SkipCheckedRecently = "checked too recently"
)

// TokenVerifier turns a bearer token into a decoded identity.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (identity.Token, error)
}

// ClaimStore reads account metadata and replaces claim sets wholesale.
type ClaimStore interface {
	GetUser(ctx context.Context, uid string) (identity.UserRecord, error)
	SetClaims(ctx context.Context, uid string, cs claims.UserClaims) error
}

// BillingProvider fetches a customer's billing profile.
type BillingProvider interface {
	FetchProfile(ctx context.Context, customerID string) (billing.Profile, error)
}

// Dispatcher forwards an assembled notification to the dispatch provider.
type Dispatcher interface {
	Send(ctx context.Context, n push.Notification) (push.Result, error)
}

// Dependencies are the external collaborators a Service composes.
type Dependencies struct {
	Verifier TokenVerifier
	Store    ClaimStore
	Billing  BillingProvider
	Dispatch Dispatcher
	Audit    AuditLogger
	Log      *logrus.Logger
}

// Config holds the policy knobs.
type Config struct {
	// TrialDuration defaults to DefaultTrialDuration.
	TrialDuration time.Duration
	// RecheckInterval defaults to DefaultRecheckInterval.
	RecheckInterval time.Duration
	// OverrideEmails are treated as always-entitled during revalidation,
	// bypassing the billing provider. Matched case-insensitively.
	OverrideEmails []string
}

// Service drives all four request paths. It holds no mutable state; each
// call is independent and safe for concurrent use.
type Service struct {
	verifier  TokenVerifier
	store     ClaimStore
	billing   BillingProvider
	dispatch  Dispatcher
	audit     AuditLogger
	log       *logrus.Logger
	overrides map[string]struct{}
	trial     time.Duration
	recheck   time.Duration
	now       func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.TrialDuration <= 0 {
		cfg.TrialDuration = DefaultTrialDuration
	}
	if cfg.RecheckInterval <= 0 {
		cfg.RecheckInterval = DefaultRecheckInterval
	}
	log := deps.Log
	if log == nil {
		log = logrus.New()
	}
	overrides := make(map[string]struct{}, len(cfg.OverrideEmails))
	for _, e := range cfg.OverrideEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			overrides[e] = struct{}{}
		}
	}
	return &Service{
		verifier:  deps.Verifier,
		store:     deps.Store,
		billing:   deps.Billing,
		dispatch:  deps.Dispatch,
		audit:     deps.Audit,
		log:       log,
		overrides: overrides,
		trial:     cfg.TrialDuration,
		recheck:   cfg.RecheckInterval,
		now:       time.Now,
	}
}

// TrialResult reports a successful trial activation.
type TrialResult struct {
	TrialExpireDate int64
}

// ActivateTrial stamps the trial expiry exactly TrialDuration after account
// creation. Activation is write-once: a token already carrying
// trialExpireDate fails with ErrAlreadyActivated and nothing is written.
func (s *Service) ActivateTrial(ctx context.Context, rawToken string) (TrialResult, error) {
	tok, err := s.verify(ctx, rawToken)
	if err != nil {
		return TrialResult{}, err
	}
	if tok.Claims.TrialSet() {
		return TrialResult{}, fmt.Errorf("trial: %w", ErrAlreadyActivated)
	}
	rec, err := s.store.GetUser(ctx, tok.UID)
	if err != nil {
		return TrialResult{}, fmt.Errorf("trial: read account: %w", err)
	}
	expire := rec.CreatedAt.Add(s.trial).UnixMilli()
	next := claims.UserClaims{
		TrialExpireDate: &expire,
		HasPremium:      tok.Claims.HasPremium,
	}
	if err := s.store.SetClaims(ctx, tok.UID, next); err != nil {
		return TrialResult{}, fmt.Errorf("trial: write claims: %w", err)
	}
	s.logTransition(ctx, tok.UID, AuditTrialActivated, next)
	return TrialResult{TrialExpireDate: expire}, nil
}

// PremiumResult reports the outcome of an initial premium check.
type PremiumResult struct {
	HasPremium bool
}

// ActivatePremium performs the initial premium check against the billing
// provider. A token already flagged premium fails with ErrAlreadyActivated.
// An inactive profile is a success with HasPremium false and no write.
// lastSubscriptionCheck is deliberately not stamped here; only the
// revalidator introduces it.
func (s *Service) ActivatePremium(ctx context.Context, rawToken string) (PremiumResult, error) {
	tok, err := s.verify(ctx, rawToken)
	if err != nil {
		return PremiumResult{}, err
	}
	if tok.Claims.PremiumActive() {
		return PremiumResult{}, fmt.Errorf("premium: %w", ErrAlreadyActivated)
	}
	profile, err := s.billing.FetchProfile(ctx, tok.UID)
	if err != nil {
		return PremiumResult{}, fmt.Errorf("premium: %w", err)
	}
	if !entitlements.AnyActive(profile.AccessLevels, s.now()) {
		return PremiumResult{HasPremium: false}, nil
	}
	next := claims.UserClaims{
		TrialExpireDate: tok.Claims.TrialExpireDate,
		HasPremium:      claims.Bool(true),
	}
	if err := s.store.SetClaims(ctx, tok.UID, next); err != nil {
		return PremiumResult{}, fmt.Errorf("premium: write claims: %w", err)
	}
	s.logTransition(ctx, tok.UID, AuditPremiumGranted, next)
	return PremiumResult{HasPremium: true}, nil
}

// RevalidateResult reports the outcome of a revalidation cycle.
type RevalidateResult struct {
	Skipped    bool
	Reason     string
	Updated    bool
	HasPremium bool
}

// RevalidatePremium re-verifies an already-flagged premium user. It skips
// without external calls when the token carries no premium flag or the last
// check is within RecheckInterval. Accounts on the override list are treated
// as active without contacting billing.
//
// A billing failure aborts the request without a write: a transient outage
// must never silently revoke premium. A downgrade writes only the carried
// trialExpireDate, dropping both hasPremium and lastSubscriptionCheck so the
// next check is not debounced.
func (s *Service) RevalidatePremium(ctx context.Context, rawToken string) (RevalidateResult, error) {
	tok, err := s.verify(ctx, rawToken)
	if err != nil {
		return RevalidateResult{}, err
	}
	if !tok.Claims.PremiumActive() {
		return RevalidateResult{Skipped: true, Reason: SkipNoPremiumClaim}, nil
	}
	if tok.Claims.CheckedWithin(s.recheck, s.now()) {
		return RevalidateResult{Skipped: true, Reason: SkipCheckedRecently}, nil
	}

	rec, err := s.store.GetUser(ctx, tok.UID)
	if err != nil {
		return RevalidateResult{}, fmt.Errorf("revalidate: read account: %w", err)
	}
	_, overridden := s.overrides[strings.ToLower(rec.Email)]
	active := overridden
	if !overridden {
		profile, err := s.billing.FetchProfile(ctx, tok.UID)
		if err != nil {
			return RevalidateResult{}, fmt.Errorf("revalidate: %w", err)
		}
		active = entitlements.AnyActive(profile.AccessLevels, s.now())
	}

	if active {
		next := claims.UserClaims{
			TrialExpireDate:       tok.Claims.TrialExpireDate,
			HasPremium:            claims.Bool(true),
			LastSubscriptionCheck: claims.Int64(s.now().UnixMilli()),
		}
		if err := s.store.SetClaims(ctx, tok.UID, next); err != nil {
			return RevalidateResult{}, fmt.Errorf("revalidate: write claims: %w", err)
		}
		s.logTransition(ctx, tok.UID, AuditPremiumRefresh, next)
		return RevalidateResult{Updated: true, HasPremium: true}, nil
	}

	next := claims.UserClaims{TrialExpireDate: tok.Claims.TrialExpireDate}
	if err := s.store.SetClaims(ctx, tok.UID, next); err != nil {
		return RevalidateResult{}, fmt.Errorf("revalidate: write claims: %w", err)
	}
	s.logTransition(ctx, tok.UID, AuditPremiumRevoked, next)
	return RevalidateResult{Updated: true, HasPremium: false}, nil
}

// NotifyInput is a dispatch request from an entitled caller.
type NotifyInput struct {
	RecipientUIDs []string
	Titles        map[string]string
	Messages      map[string]string
	// ChecklistID optionally groups related payloads downstream.
	ChecklistID string
}

// Notify authorizes the caller (active trial or premium) and forwards the
// assembled payload to the dispatch provider, relaying its response. No
// claim write happens on this path.
func (s *Service) Notify(ctx context.Context, rawToken string, in NotifyInput) (push.Result, error) {
	if len(in.RecipientUIDs) == 0 {
		return push.Result{}, fmt.Errorf("notify: recipients: %w", ErrMissingField)
	}
	if len(in.Titles) == 0 || len(in.Messages) == 0 {
		return push.Result{}, fmt.Errorf("notify: content: %w", ErrMissingField)
	}
	tok, err := s.verify(ctx, rawToken)
	if err != nil {
		return push.Result{}, err
	}
	now := s.now()
	if !tok.Claims.PremiumActive() && !tok.Claims.TrialActiveAt(now) {
		return push.Result{}, fmt.Errorf("notify: %w", ErrNoEntitlement)
	}
	res, err := s.dispatch.Send(ctx, push.Notification{
		RecipientUIDs: in.RecipientUIDs,
		Headings:      in.Titles,
		Contents:      in.Messages,
		GroupKey:      in.ChecklistID,
	})
	if err != nil {
		return push.Result{}, fmt.Errorf("notify: %w", err)
	}
	s.logTransition(ctx, tok.UID, AuditNotifyDispatch, tok.Claims)
	return res, nil
}

func (s *Service) verify(ctx context.Context, rawToken string) (identity.Token, error) {
	tok, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		s.log.WithError(err).Warn("token verification failed")
		return identity.Token{}, ErrInvalidToken
	}
	return tok, nil
}

func (s *Service) logTransition(ctx context.Context, uid, event string, cs claims.UserClaims) {
	if s.audit != nil {
		s.audit.LogTransition(ctx, uid, event, cs)
	}
}
