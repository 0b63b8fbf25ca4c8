// Package tracking fuses passive tracking-wheel encoders and an optional
// inertial heading source into a continuously updated pose and velocity
// estimate.
//
// A Rig owns its sensors outright: one background goroutine performs every
// sensor read and every write to the published snapshot, while any number of
// concurrent callers read copies of the latest snapshot through the public
// accessors. A failed read during one tick skips that tick and leaves the
// previous snapshot untouched; only an unrecoverable loss of heading stops
// the loop for good.
package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/odometry/imu"
	"go.viam.com/odometry/spatialmath"
	"go.viam.com/odometry/wheel"
)

// DefaultTickPeriod is the cadence of the fusion loop.
const DefaultTickPeriod = 10 * time.Millisecond

// Config configures a Rig.
type Config struct {
	// Origin is the pose the robot starts at.
	Origin spatialmath.Pose
	// Forward holds the wheels measuring travel along the robot's forward
	// axis. At least one is required.
	Forward []*wheel.TrackingWheel
	// Sideways holds the wheels measuring lateral travel. It may be empty,
	// in which case the estimate's Y component only moves through rotation
	// of forward travel and lateral drift goes unseen.
	Sideways []*wheel.TrackingWheel
	// IMU is the optional inertial heading source.
	IMU imu.IMU
	// TickPeriod overrides DefaultTickPeriod when positive.
	TickPeriod time.Duration
	// Clock substitutes a fake clock in tests. Nil means the wall clock.
	Clock clock.Clock
}

// Validate ensures the configured sensors can actually produce a heading.
func (cfg *Config) Validate(path string) error {
	if len(cfg.Forward) == 0 {
		return goutils.NewConfigValidationError(path,
			errors.New("at least one forward tracking wheel is required"))
	}
	if cfg.IMU == nil && findParallelPair(cfg.Forward) == nil {
		return goutils.NewConfigValidationError(path,
			errors.New("an imu or two parallel forward wheels are required to determine heading"))
	}
	return nil
}

// trackingData is the snapshot published once per tick. Only the fusion
// goroutine writes it; readers copy fields out under the mutex.
type trackingData struct {
	pose            spatialmath.Pose
	rawHeading      float64
	headingOffset   float64
	forwardTravel   float64
	linearVelocity  float64
	angularVelocity float64
}

// A Rig owns a set of tracking wheels and an optional IMU and runs the
// fusion loop over them until the process ends or Close is called.
type Rig struct {
	logger golog.Logger
	clock  clock.Clock
	ticker *clock.Ticker

	forward  []*wheel.TrackingWheel
	sideways []*wheel.TrackingWheel

	resolver   *headingResolver
	integrator *integrator
	velocity   *velocityEstimator
	// headingPrimed is false while the integrator's heading reference is
	// still a placeholder because the construction-time read failed. Only
	// the fusion goroutine touches it.
	headingPrimed bool

	// mu guards data. The loop holds it only while publishing; readers only
	// while copying out.
	mu   sync.Mutex
	data trackingData

	lastErr *lastError

	cancelCtx               context.Context
	cancelFunc              func()
	activeBackgroundWorkers sync.WaitGroup
}

// NewRig validates cfg, primes the estimator from an initial sensor sweep,
// and starts the fusion loop. Construction fails fast when no heading
// reference exists or the initial sweep shows the sensors unusable.
func NewRig(ctx context.Context, cfg Config, logger golog.Logger) (*Rig, error) {
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}

	resolver, err := newHeadingResolver(cfg.IMU, cfg.Forward)
	if err != nil {
		return nil, err
	}

	period := cfg.TickPeriod
	if period <= 0 {
		period = DefaultTickPeriod
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	forward, ferr := readAll(ctx, cfg.Forward)
	sideways, serr := readAll(ctx, cfg.Sideways)
	if err := multierr.Combine(ferr, serr); err != nil {
		return nil, errors.Wrap(err, "initial tracking wheel sweep failed")
	}

	initialState := resolver.state
	initialHeading, err := resolver.resolve(ctx)
	if initialState == headingStateInertial && resolver.state == headingStateWheelFallback {
		logger.Warnw("inertial heading source failed, switching to wheel differential for good")
	}
	headingPrimed := err == nil
	if err != nil {
		if !isRecoverable(err) {
			return nil, errors.Wrap(err, "initial heading read failed")
		}
		logger.Debugw("initial heading read failed, deferring the heading reference to the first good tick", "error", err)
		initialHeading = 0
	}

	velocity := &velocityEstimator{}
	forwardTravel, _, _ := velocity.update(travels(forward), 0, 0)

	cancelCtx, cancelFunc := context.WithCancel(ctx)
	rig := &Rig{
		logger:        logger,
		clock:         clk,
		forward:       cfg.Forward,
		sideways:      cfg.Sideways,
		resolver:      resolver,
		integrator:    newIntegrator(initialHeading, forward, sideways),
		velocity:      velocity,
		headingPrimed: headingPrimed,
		data: trackingData{
			pose:          cfg.Origin,
			rawHeading:    initialHeading,
			headingOffset: cfg.Origin.Theta,
			forwardTravel: forwardTravel,
		},
		lastErr:    newLastError(10, 5),
		cancelCtx:  cancelCtx,
		cancelFunc: cancelFunc,
	}

	// The ticker is created before the goroutine launches so a fake clock
	// advanced right after construction still lands a tick.
	rig.ticker = clk.Ticker(period)
	rig.activeBackgroundWorkers.Add(1)
	goutils.ManagedGo(rig.trackLoop, rig.activeBackgroundWorkers.Done)
	return rig, nil
}

// readAll reads every wheel's cumulative travel, pairing it with the wheel's
// mount offset. All failures are combined so a skipped tick reports every
// wheel that dropped out, not just the first.
func readAll(ctx context.Context, wheels []*wheel.TrackingWheel) ([]wheelReading, error) {
	readings := make([]wheelReading, 0, len(wheels))
	var errs error
	for _, w := range wheels {
		travel, err := w.Distance(ctx)
		if err != nil {
			errs = multierr.Combine(errs, err)
			continue
		}
		readings = append(readings, wheelReading{travel: travel, offset: w.Offset()})
	}
	if errs != nil {
		return nil, errs
	}
	return readings, nil
}

func (rig *Rig) trackLoop() {
	defer rig.ticker.Stop()

	prevTime := rig.clock.Now()
	for {
		select {
		case <-rig.cancelCtx.Done():
			return
		case <-rig.ticker.C:
		}

		now := rig.clock.Now()
		published, halt := rig.tick(rig.cancelCtx, now.Sub(prevTime).Seconds())
		if halt {
			return
		}
		// The dt of a skipped tick rolls into the next publish, so the
		// travel accumulated across an outage divides by the full span.
		if published {
			prevTime = now
		}
	}
}

// tick runs one fusion step. published reports whether a new snapshot went
// out; a skipped tick publishes nothing. halt is true only when heading has
// become undeterminable for good, which stops the loop; the snapshot then
// stays frozen at the last known-good state rather than turning corrupt.
func (rig *Rig) tick(ctx context.Context, dt float64) (published, halt bool) {
	forward, ferr := readAll(ctx, rig.forward)
	sideways, serr := readAll(ctx, rig.sideways)
	if err := multierr.Combine(ferr, serr); err != nil {
		rig.logger.Debugw("skipping tick: wheel read failed", "error", err)
		rig.lastErr.set(err)
		return false, false
	}

	prevState := rig.resolver.state
	rawHeading, err := rig.resolver.resolve(ctx)
	if prevState == headingStateInertial && rig.resolver.state == headingStateWheelFallback {
		rig.logger.Warnw("inertial heading source failed, switching to wheel differential for good")
	}
	if err != nil {
		if isRecoverable(err) {
			rig.logger.Debugw("skipping tick: heading read failed", "error", err)
			rig.lastErr.set(err)
			return false, false
		}
		rig.logger.Errorw("halting pose tracking", "error", err)
		rig.lastErr.set(err)
		return false, true
	}
	rig.lastErr.set(nil)

	if !rig.headingPrimed {
		// The construction-time heading read failed, so the integrator's
		// reference is this first good read rather than an assumed zero.
		rig.integrator.prevRawHeading = rawHeading
		rig.headingPrimed = true
	}

	gyroRate, gyroOK := rig.gyroRate(ctx)

	rig.mu.Lock()
	defer rig.mu.Unlock()

	newPose, deltaHeading := rig.integrator.update(
		rig.data.pose, rawHeading, rig.data.headingOffset, forward, sideways)
	forwardTravel, linear, angular := rig.velocity.update(travels(forward), deltaHeading, dt)
	if gyroOK {
		angular = gyroRate
	}

	rig.data.pose = newPose
	rig.data.rawHeading = rawHeading
	rig.data.forwardTravel = forwardTravel
	rig.data.linearVelocity = linear
	rig.data.angularVelocity = angular
	return true, false
}

// gyroRate reads the z-axis rate off the inertial source while it is still
// trusted. Heading-only sensors and failed reads fall back to the
// heading-delta estimate.
func (rig *Rig) gyroRate(ctx context.Context) (float64, bool) {
	if rig.resolver.state != headingStateInertial {
		return 0, false
	}
	av, err := rig.resolver.imu.AngularVelocity(ctx)
	if err != nil {
		if !errors.Is(err, imu.ErrAngularVelocityUnsupported) {
			rig.logger.Debugw("gyro rate read failed", "error", err)
		}
		return 0, false
	}
	return av.Z, true
}

// Pose returns the latest pose estimate.
func (rig *Rig) Pose() spatialmath.Pose {
	rig.mu.Lock()
	defer rig.mu.Unlock()
	return rig.data.pose
}

// LinearVelocity returns the latest forward velocity estimate in m/s.
func (rig *Rig) LinearVelocity() float64 {
	rig.mu.Lock()
	defer rig.mu.Unlock()
	return rig.data.linearVelocity
}

// AngularVelocity returns the latest angular velocity estimate in rad/s.
func (rig *Rig) AngularVelocity() float64 {
	rig.mu.Lock()
	defer rig.mu.Unlock()
	return rig.data.angularVelocity
}

// ForwardTravel returns the mean cumulative travel of the forward wheels in
// meters.
func (rig *Rig) ForwardTravel() float64 {
	rig.mu.Lock()
	defer rig.mu.Unlock()
	return rig.data.forwardTravel
}

// LastError reports a recent sensor error once enough consecutive ticks have
// failed. Transient single-tick faults stay internal.
func (rig *Rig) LastError() error {
	return rig.lastErr.get()
}

// SetPose rebases the estimate so the robot's current physical position
// reads as pose. Encoders are untouched; only the published frame moves.
func (rig *Rig) SetPose(pose spatialmath.Pose) {
	rig.mu.Lock()
	defer rig.mu.Unlock()
	rig.data.pose = pose
	rig.data.headingOffset = pose.Theta - rig.data.rawHeading
}

// Close stops the fusion loop and waits for it to exit.
func (rig *Rig) Close(ctx context.Context) error {
	rig.cancelFunc()
	rig.activeBackgroundWorkers.Wait()
	return nil
}
