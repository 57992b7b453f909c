package ecs

import (
	"sort"
	"time"
)

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain external input
	PhasePreUpdate               // 1: deliver last tick's events
	PhaseUpdate                  // 2: game logic, reads storage, queues changes
	PhasePostUpdate              // 3: derived state
	PhaseOutput                  // 4: publish results
	PhaseCleanup                 // 5: apply queued structural changes
)

// Stage is one unit of per-tick work.
type Stage interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Runner executes stages in phase order each tick. Stages of the same phase
// keep their registration order.
type Runner struct {
	stages []Stage
	sorted bool
}

func NewRunner() *Runner {
	return &Runner{
		stages: make([]Stage, 0, 16),
	}
}

func (r *Runner) Register(s Stage) {
	r.stages = append(r.stages, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.stages {
		s.Update(dt)
	}
}

// TickPhase runs only the stages of one phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.stages {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.stages, func(i, j int) bool {
			return r.stages[i].Phase() < r.stages[j].Phase()
		})
		r.sorted = true
	}
}

// StageFunc adapts a function to a Stage.
type StageFunc struct {
	At Phase
	Fn func(dt time.Duration)
}

func (s StageFunc) Phase() Phase            { return s.At }
func (s StageFunc) Update(dt time.Duration) { s.Fn(dt) }

// ApplyStage applies a Control buffer to its container at tick end. It is the
// single point where the population changes.
type ApplyStage[E any] struct {
	control  *Control[E]
	entities EntityContainer[E]
}

func NewApplyStage[E any](control *Control[E], entities EntityContainer[E]) *ApplyStage[E] {
	return &ApplyStage[E]{control: control, entities: entities}
}

func (s *ApplyStage[E]) Phase() Phase { return PhaseCleanup }

func (s *ApplyStage[E]) Update(_ time.Duration) {
	s.control.Apply(s.entities)
}
