// Package staffing finds the minimum headcount that meets a service level
// target for a given daily demand.
package staffing

import (
	"math"

	"wfm-planner/erlang"
	"wfm-planner/models"
)

// Defaults used when Options leaves a field at zero.
const (
	DefaultOperatingHours      = 13
	DefaultPeakHourRatio       = 0.14
	DefaultTargetAnswerSeconds = 20
	DefaultAvailability        = 0.70
	DefaultMaxIterations       = 5000
)

// Options configures a Solver.
type Options struct {
	Model               TrafficModel
	TargetAnswerSeconds float64
	// Availability is the fraction of paid time an agent is on queue.
	Availability  float64
	MaxIterations int
}

// Solver computes Erlang C staffing requirements. It holds no mutable state
// and is safe to share.
type Solver struct {
	model               TrafficModel
	targetAnswerSeconds float64
	availability        float64
	maxIterations       int
}

// NewSolver returns a Solver, filling unset options with defaults.
func NewSolver(opts Options) *Solver {
	s := &Solver{
		model:               opts.Model,
		targetAnswerSeconds: opts.TargetAnswerSeconds,
		availability:        opts.Availability,
		maxIterations:       opts.MaxIterations,
	}
	if s.model == nil {
		s.model = OperatingHours{Hours: DefaultOperatingHours}
	}
	if s.targetAnswerSeconds <= 0 {
		s.targetAnswerSeconds = DefaultTargetAnswerSeconds
	}
	if s.availability <= 0 || s.availability > 1 {
		s.availability = DefaultAvailability
	}
	if s.maxIterations <= 0 {
		s.maxIterations = DefaultMaxIterations
	}
	return s
}

// Model returns the traffic model in use.
func (s *Solver) Model() TrafficModel { return s.model }

// Solve returns the staffing needed to answer the given daily demand at
// targetSL percent within the target answer time.
//
// Non-positive calls or aht yield a zero result. If the iteration cap is
// reached before the target is met, the last evaluated agent count is
// returned with CapReached set.
func (s *Solver) Solve(calls, aht, targetSL float64) models.StaffingResult {
	if calls <= 0 || aht <= 0 {
		return models.StaffingResult{}
	}

	traffic := s.model.Intensity(calls, aht)
	if traffic <= 0 {
		return models.StaffingResult{}
	}

	agents := int(math.Floor(traffic)) + 1
	var sl float64
	iterations := 0
	capReached := false
	for {
		iterations++
		sl = erlang.ServiceLevel(traffic, agents, s.targetAnswerSeconds, aht)
		if sl*100 >= targetSL {
			break
		}
		if iterations >= s.maxIterations {
			capReached = true
			break
		}
		agents++
	}

	return models.StaffingResult{
		RequiredAgents: s.Inflate(agents),
		BaseAgents:     agents,
		Traffic:        traffic,
		ServiceLevel:   sl,
		TVE:            aht * sl / float64(agents),
		Iterations:     iterations,
		CapReached:     capReached,
	}
}

// Inflate converts on-queue agents to staffed headcount by dividing by the
// availability factor and rounding up.
func (s *Solver) Inflate(agents int) int {
	return int(math.Ceil(float64(agents) / s.availability))
}
