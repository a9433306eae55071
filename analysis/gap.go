// Package analysis compares historical staffing with the Erlang C
// requirement and summarizes historical KPIs.
package analysis

import (
	"math"
	"sort"

	"wfm-planner/models"
	"wfm-planner/staffing"
)

// Classification thresholds. Surplus needs service level evidence as well
// as a positive gap; deficit is flagged on the gap alone.
const (
	SurplusMinGap = 1.0
	SurplusMinSL  = 86.0
	DeficitMaxGap = -0.5
)

// Defaults for GapOptions.
const (
	DefaultGapAHT     = 300
	DefaultMinSamples = 2
)

// GapOptions configures a GapAnalyzer.
type GapOptions struct {
	// DefaultAHT is used when a record has neither AHT nor talk time.
	DefaultAHT float64
	// MinSamples is the smallest bucket that is reported.
	MinSamples int
}

// GapAnalyzer groups actual-minus-required staffing by day of month.
type GapAnalyzer struct {
	solver     *staffing.Solver
	defaultAHT float64
	minSamples int
}

// NewGapAnalyzer returns an analyzer. The solver should be the one used for
// forecasting so that both paths share a traffic model.
func NewGapAnalyzer(solver *staffing.Solver, opts GapOptions) *GapAnalyzer {
	a := &GapAnalyzer{solver: solver, defaultAHT: opts.DefaultAHT, minSamples: opts.MinSamples}
	if a.defaultAHT <= 0 {
		a.defaultAHT = DefaultGapAHT
	}
	if a.minSamples < 1 {
		a.minSamples = DefaultMinSamples
	}
	return a
}

type bucket struct {
	gapSum   float64
	slSum    float64
	agentSum float64
	count    int
}

// Analyze classifies every day-of-month bucket of history at the targetSL
// percent service level and pairs the largest surplus with the largest
// deficit.
func (a *GapAnalyzer) Analyze(history *models.History, targetSL float64) *models.GapReport {
	report := &models.GapReport{
		Days:               make([]models.DayOfMonthStat, 0),
		TargetServiceLevel: targetSL,
	}

	var buckets [32]bucket
	for _, rec := range history.Records() {
		if rec.Calls <= 0 || rec.Agents <= 0 {
			continue
		}
		aht := rec.ResolvedAHT()
		if aht <= 0 {
			aht = a.defaultAHT
			report.DefaultAHTUsed++
		}

		req := a.solver.Solve(float64(rec.Calls), aht, targetSL)
		if req.CapReached {
			report.SolverCapReached++
		}
		b := &buckets[rec.Date.Day()]
		b.gapSum += float64(rec.Agents - req.RequiredAgents)
		b.slSum += rec.SL
		b.agentSum += float64(rec.Agents)
		b.count++
		report.RecordsUsed++
	}

	var surplus, deficit []models.DayOfMonthStat
	for d := 1; d <= 31; d++ {
		b := buckets[d]
		if b.count < a.minSamples {
			continue
		}
		n := float64(b.count)
		stat := models.DayOfMonthStat{
			Day:              d,
			MeanGap:          b.gapSum / n,
			MeanServiceLevel: b.slSum / n,
			MeanActualAgents: b.agentSum / n,
			SampleCount:      b.count,
		}
		stat.Status = Classify(stat.MeanGap, stat.MeanServiceLevel)
		stat.Adjustment = Adjustment(stat.MeanGap)

		switch stat.Status {
		case models.GapSurplus:
			surplus = append(surplus, stat)
		case models.GapDeficit:
			deficit = append(deficit, stat)
		default:
			report.BalancedDays++
			continue
		}
		report.Days = append(report.Days, stat)
	}

	if len(surplus) > 0 && len(deficit) > 0 {
		// Stable sort keeps the earlier day of month first on ties.
		sort.SliceStable(surplus, func(i, j int) bool {
			return surplus[i].MeanGap > surplus[j].MeanGap
		})
		sort.SliceStable(deficit, func(i, j int) bool {
			return math.Abs(deficit[i].MeanGap) > math.Abs(deficit[j].MeanGap)
		})
		report.Rebalance = &models.Rebalance{
			FromDay:       surplus[0].Day,
			ToDay:         deficit[0].Day,
			SurplusAmount: surplus[0].MeanGap,
			DeficitAmount: math.Abs(deficit[0].MeanGap),
		}
	}
	return report
}

// Adjustment rounds meanGap half-up and drops the sign, so a surplus of
// 2.5 suggests removing 3 agents and a deficit of -1.5 suggests adding 1.
func Adjustment(meanGap float64) int {
	return int(math.Abs(math.Floor(meanGap + 0.5)))
}

// Classify applies the surplus/deficit thresholds to a bucket's mean gap
// and mean service level (percent).
func Classify(meanGap, meanSL float64) models.GapStatus {
	switch {
	case meanGap >= SurplusMinGap && meanSL >= SurplusMinSL:
		return models.GapSurplus
	case meanGap <= DeficitMaxGap:
		return models.GapDeficit
	default:
		return models.GapBalanced
	}
}
