package publisher

import (
	"context"
	"time"

	"github.com/platinummonkey/schemahub/pkg/async"
	"github.com/platinummonkey/schemahub/pkg/auth"
	"github.com/platinummonkey/schemahub/pkg/idempotency"
	"github.com/platinummonkey/schemahub/pkg/lock"
	"github.com/platinummonkey/schemahub/pkg/notifier"
	"github.com/platinummonkey/schemahub/pkg/orgs"
	"github.com/platinummonkey/schemahub/pkg/policy"
	"github.com/platinummonkey/schemahub/pkg/storage"
	"github.com/platinummonkey/schemahub/pkg/usage"
)

// DefaultRetentionDays is how long an unapproved schema check survives
// before the purge worker removes it.
const DefaultRetentionDays = 7

// notifyTimeout bounds each asynchronous notification dispatch so a slow
// webhook endpoint can never hold a goroutine open indefinitely.
const notifyTimeout = 10 * time.Second

// Deps are the collaborators a Publisher is constructed against.
type Deps struct {
	Store         storage.Storage
	Locker        *lock.Locker
	Idempotency   *idempotency.Cache
	Authorizer    auth.Authorizer
	Notifier      *notifier.Manager
	PolicyEngine  policy.PolicyEngine
	Oracle        usage.Oracle
	Orgs          orgs.Service
	RetentionDays int
}

// Publisher runs the check/publish/delete pipeline described by the
// Schema Publisher component: authorize, lock, load context, dispatch to
// a Model, persist, notify.
type Publisher struct {
	store         storage.Storage
	locker        *lock.Locker
	idem          *idempotency.Cache
	authz         auth.Authorizer
	notify        *notifier.Manager
	policyEngine  policy.PolicyEngine
	oracle        usage.Oracle
	orgsSvc       orgs.Service
	retentionDays int
}

// New builds a Publisher. Idempotency and Notifier may be nil: a nil
// Idempotency cache disables publish deduplication, a nil Notifier makes
// notification fan-out a no-op.
func New(deps Deps) *Publisher {
	retentionDays := deps.RetentionDays
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &Publisher{
		store:         deps.Store,
		locker:        deps.Locker,
		idem:          deps.Idempotency,
		authz:         deps.Authorizer,
		notify:        deps.Notifier,
		policyEngine:  deps.PolicyEngine,
		oracle:        deps.Oracle,
		orgsSvc:       deps.Orgs,
		retentionDays: retentionDays,
	}
}

// dispatch fans an event out through the notifier without blocking the
// caller; delivery failures are logged by async.SafeGo and never surfaced.
func (p *Publisher) dispatch(ctx context.Context, event *notifier.Event) {
	if p.notify == nil {
		return
	}
	async.SafeGo(ctx, notifyTimeout, "notifier dispatch "+string(event.Type), func(ctx context.Context) error {
		return p.notify.Dispatch(ctx, event)
	})
}
