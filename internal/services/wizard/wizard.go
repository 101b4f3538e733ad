package wizard

import (
	"context"
	"errors"
	"fmt"
	"kr-eta-service/internal/domain"
	"kr-eta-service/internal/platform/obs"
	"kr-eta-service/internal/ports"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Options struct {
	Logger  *zap.Logger
	Metrics *obs.Metrics
	// NewID generates session, entry and route ids. Defaults to random UUIDs.
	NewID func() string
}

// Wizard drives the route-building steps: credentials, start, end and
// waypoints. It holds no per-flow state; every call takes and returns a Session.
type Wizard struct {
	store     ports.RouteStore
	geocoders ports.GeocoderFactory
	logger    *zap.Logger
	metrics   *obs.Metrics
	newID     func() string
}

func New(store ports.RouteStore, geocoders ports.GeocoderFactory, opts Options) *Wizard {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &Wizard{
		store:     store,
		geocoders: geocoders,
		logger:    logger,
		metrics:   opts.Metrics,
		newID:     newID,
	}
}

// Begin opens a session. When an entry already exists its keys are reused and
// the session starts at the start location step, targeting that entry.
func (w *Wizard) Begin(ctx context.Context) (_ StepResult, err error) {
	defer obs.Time(ctx, w.logger, "wizard.Begin")(&err)

	entries, err := w.store.ListEntries(ctx)
	if err != nil {
		return StepResult{}, fmt.Errorf("begin flow: list entries: %w", err)
	}

	sess := Session{
		ID:        w.newID(),
		State:     StateAwaitingCredentials,
		Waypoints: []domain.Location{},
	}
	if len(entries) > 0 {
		sess.EntryID = entries[0].ID
		sess.Credentials = entries[0].Credentials
		sess.State = StateAwaitingStart
	}

	return StepResult{Session: sess}, nil
}

// Step applies one submitted form to the session. Validation and geocoding
// failures are returned as error tags with the state unchanged; only
// store failures and misuse are returned as errors.
func (w *Wizard) Step(ctx context.Context, sess Session, in StepInput) (res StepResult, err error) {
	defer obs.Time(ctx, w.logger, "wizard.Step")(&err)

	step := sess.State
	defer func() {
		w.metrics.WizardStep(string(step), stepOutcome(res, err))
	}()

	switch sess.State {
	case StateAwaitingCredentials:
		return w.stepCredentials(sess, in), nil
	case StateAwaitingStart:
		return w.stepStart(ctx, sess, in)
	case StateAwaitingEnd:
		return w.stepEnd(ctx, sess, in)
	case StateAwaitingWaypoint:
		return w.stepWaypoint(ctx, sess, in)
	case StateDone:
		return StepResult{}, fmt.Errorf("step %q: %w", sess.ID, domain.ErrSessionDone)
	default:
		return StepResult{}, fmt.Errorf("step %q: state %q: %w", sess.ID, sess.State, domain.ErrUnknownState)
	}
}

func (w *Wizard) stepCredentials(sess Session, in StepInput) StepResult {
	creds := domain.Credentials{
		GeocodingAPIKey:  strings.TrimSpace(in.GeocodingAPIKey),
		DirectionsAPIKey: strings.TrimSpace(in.DirectionsAPIKey),
	}
	if !creds.Complete() {
		return reprompt(sess, domain.TagNeedAPIKeys)
	}

	sess.Credentials = creds
	sess.EntryID = w.newID()
	sess.State = StateAwaitingStart
	return StepResult{Session: sess}
}

func (w *Wizard) stepStart(ctx context.Context, sess Session, in StepInput) (StepResult, error) {
	loc, tag, err := w.resolve(ctx, sess, in)
	if err != nil {
		return StepResult{}, err
	}
	if tag != "" {
		return reprompt(sess, tag), nil
	}

	sess.Start = &loc
	sess.State = StateAwaitingEnd
	return StepResult{Session: sess}, nil
}

func (w *Wizard) stepEnd(ctx context.Context, sess Session, in StepInput) (StepResult, error) {
	loc, tag, err := w.resolve(ctx, sess, in)
	if err != nil {
		return StepResult{}, err
	}
	if tag != "" {
		return reprompt(sess, tag), nil
	}

	sess.End = &loc
	if in.AddWaypoint {
		sess.State = StateAwaitingWaypoint
		return StepResult{Session: sess}, nil
	}
	return w.finalize(ctx, sess)
}

func (w *Wizard) stepWaypoint(ctx context.Context, sess Session, in StepInput) (StepResult, error) {
	// The cap is checked before the input is looked at.
	if len(sess.Waypoints) >= domain.MaxWaypoints {
		return reprompt(sess, domain.TagMaxWaypoints), nil
	}

	loc, tag, err := w.resolve(ctx, sess, in)
	if err != nil {
		return StepResult{}, err
	}
	if tag != "" {
		return reprompt(sess, tag), nil
	}

	waypoints := make([]domain.Location, 0, len(sess.Waypoints)+1)
	waypoints = append(waypoints, sess.Waypoints...)
	sess.Waypoints = append(waypoints, loc)

	if in.AddWaypoint {
		return StepResult{Session: sess}, nil
	}
	return w.finalize(ctx, sess)
}

// resolve turns the submitted address into a Location. A non-empty tag means
// the step must be presented again.
func (w *Wizard) resolve(ctx context.Context, sess Session, in StepInput) (domain.Location, string, error) {
	if strings.TrimSpace(in.Address) == "" {
		return domain.Location{}, domain.TagNeedAddress, nil
	}

	gc, err := w.geocoders(sess.Credentials.GeocodingAPIKey)
	if err != nil {
		return domain.Location{}, "", fmt.Errorf("step %q: build geocoder: %w", sess.State, err)
	}

	address := DecodeAddress(in.Address)
	x, y, err := gc.Resolve(ctx, address)
	if err != nil {
		w.logger.Warn("failed to resolve address",
			zap.String("flow_id", sess.ID),
			zap.String("step", string(sess.State)),
			zap.String("address", address),
			zap.Error(err),
		)
		return domain.Location{}, domain.TagAddressNotFound, nil
	}

	loc := domain.Location{Address: address, X: x, Y: y}
	if in.Name != "" {
		name := in.Name
		loc.Name = &name
	}
	return loc, "", nil
}

// finalize appends the collected route to the target entry, creating the
// entry when this flow set it up.
func (w *Wizard) finalize(ctx context.Context, sess Session) (StepResult, error) {
	if sess.Start == nil || sess.End == nil {
		return StepResult{}, fmt.Errorf("finalize %q: %w", sess.ID, domain.ErrMissingEndpoints)
	}

	route := domain.Route{
		ID:        w.newID(),
		Start:     *sess.Start,
		End:       *sess.End,
		Waypoints: append([]domain.Location{}, sess.Waypoints...),
	}

	entry, err := w.store.GetEntry(ctx, sess.EntryID)
	switch {
	case errors.Is(err, domain.ErrEntryNotFound):
		entry = &domain.Entry{
			ID:          sess.EntryID,
			Title:       domain.DefaultEntryTitle,
			Credentials: sess.Credentials,
		}
	case err != nil:
		return StepResult{}, fmt.Errorf("finalize %q: %w", sess.ID, err)
	}

	entry.Routes = append(entry.Routes, route)
	if err := w.store.SaveEntry(ctx, entry); err != nil {
		return StepResult{}, fmt.Errorf("finalize %q: %w", sess.ID, err)
	}

	w.logger.Info("route added",
		zap.String("entry_id", entry.ID),
		zap.String("route_id", route.ID),
		zap.Int("waypoints", len(route.Waypoints)),
	)

	sess.State = StateDone
	return StepResult{Session: sess, Route: &route}, nil
}

// DecodeAddress applies form decoding ("+" as space, %XX escapes).
// Input that does not decode is returned unchanged.
func DecodeAddress(address string) string {
	decoded, err := url.QueryUnescape(address)
	if err != nil {
		return address
	}
	return decoded
}

func stepOutcome(res StepResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case res.Errors["base"] != "":
		return res.Errors["base"]
	case res.Done():
		return "finalized"
	default:
		return "advanced"
	}
}
