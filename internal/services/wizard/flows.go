package wizard

import (
	"context"
	"fmt"
	"kr-eta-service/internal/platform/obs"
	"kr-eta-service/internal/ports"
	"time"

	"go.uber.org/zap"
)

const DefaultSessionTTL = 30 * time.Minute

// Flows persists wizard sessions between host calls. A flow that is
// abandoned or expires before it finishes leaves nothing in the route store.
type Flows struct {
	wizard   *Wizard
	sessions ports.SessionStore
	ttl      time.Duration
	logger   *zap.Logger
}

func NewFlows(w *Wizard, sessions ports.SessionStore, ttl time.Duration) *Flows {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Flows{wizard: w, sessions: sessions, ttl: ttl, logger: w.logger}
}

// Start opens a flow. Keys passed with the request are applied right away
// when the flow begins at the credentials step.
func (f *Flows) Start(ctx context.Context, in StepInput) (_ StepResult, err error) {
	defer obs.Time(ctx, f.logger, "flows.Start")(&err)

	res, err := f.wizard.Begin(ctx)
	if err != nil {
		return StepResult{}, err
	}

	if res.Session.State == StateAwaitingCredentials && in.hasCredentials() {
		res, err = f.wizard.Step(ctx, res.Session, in)
		if err != nil {
			return StepResult{}, err
		}
	}

	if err := f.save(ctx, res.Session); err != nil {
		return StepResult{}, err
	}
	return res, nil
}

// Advance applies one step to a stored flow. Finished flows are removed from
// the session store.
func (f *Flows) Advance(ctx context.Context, flowID string, in StepInput) (_ StepResult, err error) {
	defer obs.Time(ctx, f.logger, "flows.Advance")(&err)

	sess, err := f.Load(ctx, flowID)
	if err != nil {
		return StepResult{}, err
	}

	res, err := f.wizard.Step(ctx, sess, in)
	if err != nil {
		return StepResult{}, err
	}

	if res.Done() {
		if err := f.sessions.Delete(ctx, flowID); err != nil {
			f.logger.Warn("failed to delete finished flow", zap.String("flow_id", flowID), zap.Error(err))
		}
		return res, nil
	}

	if err := f.save(ctx, res.Session); err != nil {
		return StepResult{}, err
	}
	return res, nil
}

func (f *Flows) Abandon(ctx context.Context, flowID string) error {
	if _, err := f.Load(ctx, flowID); err != nil {
		return err
	}
	if err := f.sessions.Delete(ctx, flowID); err != nil {
		return fmt.Errorf("abandon flow %q: %w", flowID, err)
	}
	return nil
}

func (f *Flows) Load(ctx context.Context, flowID string) (Session, error) {
	data, err := f.sessions.Get(ctx, flowID)
	if err != nil {
		return Session{}, fmt.Errorf("load flow: %w", err)
	}
	return DecodeSession(data)
}

func (f *Flows) save(ctx context.Context, sess Session) error {
	data, err := sess.Encode()
	if err != nil {
		return err
	}
	if err := f.sessions.Put(ctx, sess.ID, data, f.ttl); err != nil {
		return fmt.Errorf("save flow: %w", err)
	}
	return nil
}
