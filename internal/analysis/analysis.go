// Package analysis produces mocked crop-health results for stored fields.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/woozymasta/agroglobe/internal/fields"

	"github.com/rs/zerolog/log"
)

// ErrBusy is returned when an analysis for the field is already running.
var ErrBusy = errors.New("analysis already running")

// Risk classifies an infection probability.
type Risk string

// Risk levels, from the dashboard's color thresholds.
const (
	RiskLow      Risk = "low"
	RiskModerate Risk = "moderate"
	RiskHigh     Risk = "high"
	RiskCritical Risk = "critical"
)

// RiskLevel maps an infection chance in [0, 1] to a risk level.
func RiskLevel(chance float64) Risk {
	switch {
	case chance > 0.75:
		return RiskCritical
	case chance > 0.5:
		return RiskHigh
	case chance > 0.25:
		return RiskModerate
	}
	return RiskLow
}

// Analyzer runs mocked analyses against a field store.
type Analyzer struct {
	store   *fields.Store
	rng     *rand.Rand
	running map[string]bool // by field ID
	wg      sync.WaitGroup
	delay   time.Duration
	mu      sync.Mutex
}

// New creates an analyzer. A zero seed picks a random one.
func New(store *fields.Store, delay time.Duration, seed uint64) *Analyzer {
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &Analyzer{
		store:   store,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		running: make(map[string]bool),
		delay:   delay,
	}
}

// Start marks the field as loading and finishes the analysis in the
// background after the configured delay. The run follows the field's ID,
// so renaming it meanwhile is safe.
func (a *Analyzer) Start(ctx context.Context, name string) error {
	f, err := a.acquire(name)
	if err != nil {
		return err
	}

	log.Info().Str("field", f.Name).Dur("delay", a.delay).Msg("Analyzing field data")

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.release(f.ID)

		if _, err := a.finish(ctx, f.ID); err != nil {
			log.Warn().Err(err).Str("field", f.Name).Msg("Analysis aborted")
		}
	}()

	return nil
}

// Analyze runs an analysis synchronously and returns the updated field.
func (a *Analyzer) Analyze(ctx context.Context, name string) (fields.Field, error) {
	f, err := a.acquire(name)
	if err != nil {
		return fields.Field{}, err
	}
	defer a.release(f.ID)

	return a.finish(ctx, f.ID)
}

// Wait blocks until every background analysis has finished.
func (a *Analyzer) Wait() {
	a.wg.Wait()
}

// acquire resolves the field, claims it for one run and marks it loading.
func (a *Analyzer) acquire(name string) (fields.Field, error) {
	f, err := a.store.Get(name)
	if err != nil {
		return fields.Field{}, err
	}

	a.mu.Lock()
	if a.running[f.ID] {
		a.mu.Unlock()
		return fields.Field{}, fmt.Errorf("%w: %q", ErrBusy, name)
	}
	a.running[f.ID] = true
	a.mu.Unlock()

	a.store.SetLoadingByID(f.ID, true)
	return f, nil
}

func (a *Analyzer) finish(ctx context.Context, id string) (fields.Field, error) {
	timer := time.NewTimer(a.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		a.store.SetLoadingByID(id, false)
		return fields.Field{}, ctx.Err()
	case <-timer.C:
	}

	health := a.sample()
	loading := false

	f, err := a.store.UpdateByID(id, fields.Patch{Loading: &loading, Data: &health})
	if err != nil {
		// field removed while the analysis was running
		return fields.Field{}, err
	}

	log.Info().
		Str("field", f.Name).
		Bool("infected", health.Infected).
		Float64("infection_chance", health.InfectionChance).
		Str("risk", string(RiskLevel(health.InfectionChance))).
		Msg("Field analysis finished")

	return f, nil
}

func (a *Analyzer) sample() fields.Health {
	a.mu.Lock()
	defer a.mu.Unlock()

	chance := math.Round(a.rng.Float64()*100) / 100
	infected := a.rng.Float64() < chance*0.5

	return fields.Health{Infected: infected, InfectionChance: chance}
}

func (a *Analyzer) release(id string) {
	a.mu.Lock()
	delete(a.running, id)
	a.mu.Unlock()
}
