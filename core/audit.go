package core

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/PaulFidika/subkit/claims"
)

// Entitlement transition events.
const (
	AuditTrialActivated = "trial_activated"
	AuditPremiumGranted = "premium_granted"
	AuditPremiumRefresh = "premium_refreshed"
	AuditPremiumRevoked = "premium_revoked"
	AuditNotifyDispatch = "notification_dispatched"
)

// AuditLogger records entitlement transitions to an external sink.
// Implementations should be non-blocking and best-effort.
type AuditLogger interface {
	LogTransition(ctx context.Context, uid, event string, cs claims.UserClaims)
}

// LogAudit writes transitions as structured log lines.
type LogAudit struct {
	Log *logrus.Logger
}

func NewLogAudit(log *logrus.Logger) *LogAudit { return &LogAudit{Log: log} }

func (a *LogAudit) LogTransition(_ context.Context, uid, event string, cs claims.UserClaims) {
	if a == nil || a.Log == nil {
		return
	}
	fields := logrus.Fields{"uid": uid, "event": event}
	if cs.TrialExpireDate != nil {
		fields["trial_expire_date"] = *cs.TrialExpireDate
	}
	if cs.HasPremium != nil {
		fields["has_premium"] = *cs.HasPremium
	}
	a.Log.WithFields(fields).Info("entitlement transition")
}
