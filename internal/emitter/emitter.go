package emitter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/delivery"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/ports"
	"tracking/internal/pkg/errs"
)

const (
	// DefaultInterval is the cadence of position emission.
	DefaultInterval = 10 * time.Second
	// DefaultMaxFailures is how many consecutive tick failures are tolerated
	// before the delivery is moved to Error and its loop torn down.
	DefaultMaxFailures = 3
)

// Config tunes the emitter. Zero fields fall back to defaults.
type Config struct {
	// Interval between position emissions.
	Interval time.Duration
	// ProximityThresholdMeters is the restaurant arrival radius.
	ProximityThresholdMeters float64
	// MaxFailures is the consecutive-failure budget per loop.
	MaxFailures int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.ProximityThresholdMeters <= 0 {
		c.ProximityThresholdMeters = delivery.DefaultProximityThresholdMeters
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = DefaultMaxFailures
	}
	return c
}

// loop is one running emission goroutine. The emitter map holds at most one
// loop per delivery; the pointer itself is the generation token, so a stale
// loop can never remove its successor from the map.
type loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Emitter drives simulated driver movement for tracked deliveries. It owns
// one goroutine per active delivery, each advancing along a computed route
// one point per cadence tick, persisting the position and publishing it to
// watchers.
//
// Emitter implements ports.PositionEmitter.
type Emitter struct {
	uowFactory commands.UoWFactory
	planner    ports.RoutePlanner
	publisher  ports.EventPublisher
	logger     *slog.Logger
	cfg        Config
	clock      func() time.Time

	mu    sync.Mutex
	loops map[string]*loop
}

// New creates an Emitter.
func New(
	uowFactory commands.UoWFactory,
	planner ports.RoutePlanner,
	publisher ports.EventPublisher,
	logger *slog.Logger,
	cfg Config,
) *Emitter {
	return &Emitter{
		uowFactory: uowFactory,
		planner:    planner,
		publisher:  publisher,
		logger:     logger.With("component", "position_emitter"),
		cfg:        cfg.withDefaults(),
		clock:      time.Now,
		loops:      make(map[string]*loop),
	}
}

// StartTracking begins the restaurant-bound emission loop for a delivery that
// just received a driver. Starting an already-tracked delivery is a no-op.
//
// The route runs from the driver's current position to the restaurant; the
// destination leg is computed later by ResumeAfterRestaurant.
func (e *Emitter) StartTracking(ctx context.Context, deliveryID kernel.UUID) error {
	aggregate, err := e.load(ctx, deliveryID)
	if err != nil {
		return err
	}

	if aggregate.Status() != delivery.ToRestaurant {
		return errs.NewInvalidDeliveryStateError("start tracking", aggregate.Status().String())
	}

	position := aggregate.Position()
	if position == nil {
		return errs.NewValueIsRequiredError("driver position")
	}

	plan, err := e.planner.ComputeRoute(ctx, *position, aggregate.RestaurantLocation())
	if err != nil {
		return err
	}

	e.spawn(deliveryID, plan, aggregate.RestaurantLocation())
	return nil
}

// ResumeAfterRestaurant moves a delivery paused at the restaurant into its
// destination-bound phase and starts the second emission loop. The phase
// transition happens here, inside the emitter, so the stored status and the
// running loop cannot disagree.
func (e *Emitter) ResumeAfterRestaurant(ctx context.Context, deliveryID kernel.UUID) error {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.DeliveryRepository()

	aggregate, err := repo.Get(ctx, deliveryID)
	if err != nil {
		return err
	}

	now := e.clock()
	if err = aggregate.Resume(now); err != nil {
		return err
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return err
	}

	position := aggregate.Position()
	if position == nil {
		return errs.NewValueIsRequiredError("driver position")
	}

	plan, err := e.planner.ComputeRoute(ctx, *position, aggregate.DeliveryLocation())
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if err = e.publisher.Publish(ctx, delivery.NewPhaseEvent(
		deliveryID, delivery.ToDestination, position, e.cfg.Interval, now)); err != nil {
		e.logger.WarnContext(ctx, "Phase event publish failed", "delivery_id", deliveryID.String(), "error", err)
	}

	e.spawn(deliveryID, plan, aggregate.RestaurantLocation())
	return nil
}

// StopTracking tears down the emission loop for the delivery, if any, and
// waits for its goroutine to exit. After StopTracking returns, no further
// tick of that loop can write to the registry.
func (e *Emitter) StopTracking(deliveryID kernel.UUID) {
	key := deliveryID.String()

	e.mu.Lock()
	l, ok := e.loops[key]
	if ok {
		delete(e.loops, key)
	}
	e.mu.Unlock()

	if ok {
		l.cancel()
		<-l.done
	}
}

// ActiveLoops reports how many deliveries are currently being tracked.
func (e *Emitter) ActiveLoops() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.loops)
}

// Shutdown stops every running loop. Used on process teardown.
func (e *Emitter) Shutdown() {
	e.mu.Lock()
	loops := make([]*loop, 0, len(e.loops))
	for key, l := range e.loops {
		loops = append(loops, l)
		delete(e.loops, key)
	}
	e.mu.Unlock()

	for _, l := range loops {
		l.cancel()
		<-l.done
	}
}

// spawn registers and starts a loop for the delivery. If a loop already
// exists the call is a no-op: Start and Resume are idempotent.
func (e *Emitter) spawn(deliveryID kernel.UUID, plan kernel.RoutePlan, restaurant kernel.Location) {
	key := deliveryID.String()

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.loops[key]; exists {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &loop{cancel: cancel, done: make(chan struct{})}
	e.loops[key] = l

	go e.run(ctx, l, deliveryID, plan, restaurant)
}

// retire removes the loop from the map, unless it has already been replaced.
func (e *Emitter) retire(deliveryID kernel.UUID, l *loop) {
	key := deliveryID.String()

	e.mu.Lock()
	if current, ok := e.loops[key]; ok && current == l {
		delete(e.loops, key)
	}
	e.mu.Unlock()
}

// run is the per-delivery emission goroutine. One route point is consumed
// per tick; the loop exits when the phase machine halts it, the failure
// budget is exhausted, or the loop is cancelled.
func (e *Emitter) run(ctx context.Context, l *loop, deliveryID kernel.UUID, plan kernel.RoutePlan, restaurant kernel.Location) {
	defer close(l.done)
	defer e.retire(deliveryID, l)

	logger := e.logger.With("delivery_id", deliveryID.String())
	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	stepIndex := 0
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// Each tick emits the point at the current index, so an N-point leg
		// takes exactly N ticks. A failed tick retries the same point.
		halt, err := e.tick(ctx, deliveryID, plan, stepIndex, restaurant)
		if err != nil {
			failures++
			logger.WarnContext(ctx, "Emission tick failed", "failures", failures, "error", err)

			if failures >= e.cfg.MaxFailures {
				e.fail(ctx, deliveryID, logger)
				return
			}
			continue
		}

		failures = 0
		if halt {
			return
		}

		// Hold at the final point until the phase machine halts the loop.
		if stepIndex+1 < plan.Len() {
			stepIndex++
		}
	}
}

// tick performs one emission step: persist the new position, let the phase
// machine decide on a transition, and publish the result to watchers.
func (e *Emitter) tick(ctx context.Context, deliveryID kernel.UUID, plan kernel.RoutePlan, stepIndex int, restaurant kernel.Location) (halt bool, err error) {
	point, err := plan.Point(stepIndex)
	if err != nil {
		return false, err
	}

	now := e.clock()

	uow := e.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.DeliveryRepository()

	aggregate, err := repo.Get(ctx, deliveryID)
	if err != nil {
		return false, err
	}

	// A terminal write from confirm/cancel may have raced this tick.
	if !aggregate.Status().IsMoving() {
		return true, nil
	}

	if err = aggregate.UpdatePosition(point, now); err != nil {
		return false, err
	}

	decision, err := delivery.NextPhase(
		aggregate.Status(), point, plan, stepIndex, restaurant, e.cfg.ProximityThresholdMeters)
	if err != nil {
		return false, err
	}

	if decision.Changed {
		switch decision.Next {
		case delivery.AtRestaurant:
			err = aggregate.ArriveAtRestaurant(now)
		case delivery.Arrived:
			err = aggregate.Arrive(now)
		default:
			err = errs.NewInvalidDeliveryStateError("transition", decision.Next.String())
		}
		if err != nil {
			return false, err
		}
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return false, errs.NewRegistryWriteFailureError(deliveryID.String(), err)
	}

	if err = uow.Commit(ctx); err != nil {
		return false, errs.NewRegistryWriteFailureError(deliveryID.String(), err)
	}

	event := delivery.NewPositionEvent(deliveryID, point, e.cfg.Interval, now)
	if decision.Changed {
		event = delivery.NewPhaseEvent(deliveryID, decision.Next, &point, e.cfg.Interval, now)
	}

	if err = e.publisher.Publish(ctx, event); err != nil {
		return false, err
	}

	return decision.HaltLoop, nil
}

// fail moves the delivery to Error after the failure budget is spent. The
// write itself is best-effort: if even this fails the loop still dies, and
// the watchdog job will find the stalled delivery later.
func (e *Emitter) fail(ctx context.Context, deliveryID kernel.UUID, logger *slog.Logger) {
	now := e.clock()

	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to open transaction for error transition", "error", err)
		return
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.DeliveryRepository()

	aggregate, err := repo.Get(ctx, deliveryID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load delivery for error transition", "error", err)
		return
	}

	if err = aggregate.Fail(now); err != nil {
		logger.ErrorContext(ctx, "Failed to transition delivery to error", "error", err)
		return
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		logger.ErrorContext(ctx, "Failed to persist error transition", "error", err)
		return
	}

	if err = uow.Commit(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to commit error transition", "error", err)
		return
	}

	if err = e.publisher.Publish(ctx, delivery.NewPhaseEvent(
		deliveryID, delivery.Error, aggregate.Position(), e.cfg.Interval, now)); err != nil {
		logger.WarnContext(ctx, "Error phase publish failed", "error", err)
	}
}

// load fetches a delivery outside any long-lived transaction.
func (e *Emitter) load(ctx context.Context, deliveryID kernel.UUID) (*delivery.Delivery, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.DeliveryRepository().Get(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return aggregate, nil
}
