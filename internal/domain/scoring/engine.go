package scoring

import (
	"math"
	"time"

	"taskhub/internal/domain/task"
)

// The pillar calculators are stateless functions of their inputs. Given the
// same dataset and window they produce bit-identical output: no randomness
// and no wall-clock reads beyond the window bounds.

// SizePoints returns the output-pillar weight for a task size.
func SizePoints(size string) float64 {
	switch size {
	case task.SizeEasy:
		return PointsEasy
	case task.SizeDifficult:
		return PointsDifficult
	default:
		return PointsMedium
	}
}

// WindowDays returns the whole-day span of the window, never less than one.
func WindowDays(start, end time.Time) int {
	days := int(math.Round(end.Sub(start).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// Workdays counts working days in the window: a 7-day week contributes 5
// workdays regardless of which calendar days the window covers.
func Workdays(windowDays int) int {
	workdays := int(math.Round(float64(windowDays) * 5.0 / 7.0))
	if workdays < 1 {
		return 1
	}
	return workdays
}

// OutputScore measures throughput against the weekly target. A zero target
// scores 100: no target is treated as automatically satisfied.
func OutputScore(completed []CompletedTask, weeklyTarget float64, windowDays int) (score, totalPoints, targetPoints float64) {
	for _, t := range completed {
		totalPoints += SizePoints(t.Size)
	}
	targetPoints = weeklyTarget * (float64(windowDays) / 7.0)
	if targetPoints <= 0 {
		return 100, totalPoints, targetPoints
	}
	score = math.Min(100, 100*totalPoints/targetPoints)
	return score, totalPoints, targetPoints
}

// QualityScore measures rework by replaying the transition log. A reviewed
// task is first-pass when its history never entered reopened. Zero reviewed
// tasks default the first-pass rate to 1.0: absent review activity is not
// penalized. The reopen rate over all completed tasks is diagnostic only and
// is not blended into the score.
func QualityScore(completed []CompletedTask, eventsByTask map[string][]StatusEvent) (score, firstPassRate, reopenRate float64, reviewed, firstPass, reopened int) {
	for _, t := range completed {
		wasReopened := hasReopenEvent(eventsByTask[t.ID])
		if wasReopened {
			reopened++
		}
		if !t.RequiresReview {
			continue
		}
		reviewed++
		if !wasReopened {
			firstPass++
		}
	}

	firstPassRate = 1.0
	if reviewed > 0 {
		firstPassRate = float64(firstPass) / float64(reviewed)
	}
	reopenRate = 0
	if len(completed) > 0 {
		reopenRate = float64(reopened) / float64(len(completed))
	}
	return 100 * firstPassRate, firstPassRate, reopenRate, reviewed, firstPass, reopened
}

func hasReopenEvent(events []StatusEvent) bool {
	for _, e := range events {
		if e.ToStatus == task.StatusReopened {
			return true
		}
	}
	return false
}

// ReliabilityScore measures deadline discipline. Zero completions score the
// neutral midpoint. Each carry-forward event subtracts a capped penalty.
func ReliabilityScore(completed []CompletedTask, carryForwardEvents int) (score float64, onTime int) {
	if len(completed) == 0 {
		return NeutralReliability, 0
	}
	for _, t := range completed {
		if t.Deadline == nil || !t.CompletedAt.After(*t.Deadline) {
			onTime++
		}
	}
	onTimeRate := float64(onTime) / float64(len(completed))
	score = clamp(100*onTimeRate-carryForwardPenalty(carryForwardEvents), 0, 100)
	return score, onTime
}

func carryForwardPenalty(events int) float64 {
	return math.Min(CarryForwardPenaltyCap, CarryForwardPenaltyPerEvent*float64(events))
}

// ConsistencyScore averages planning discipline and KPI breadth. Zero
// assigned KPI buckets contribute a zero spread rather than dividing by zero.
func ConsistencyScore(plannedDays, workdays int, completed []CompletedTask, assignedKPIBuckets int) (score float64, bucketsTouched int) {
	planningRatio := 0.0
	if workdays > 0 {
		planningRatio = math.Min(1, float64(plannedDays)/float64(workdays))
	}

	touched := map[string]struct{}{}
	for _, t := range completed {
		if t.KPIBucketID != "" {
			touched[t.KPIBucketID] = struct{}{}
		}
	}
	bucketsTouched = len(touched)

	spreadRatio := 0.0
	if assignedKPIBuckets > 0 {
		spreadRatio = math.Min(1, float64(bucketsTouched)/float64(assignedKPIBuckets))
	}

	return 100 * (planningRatio + spreadRatio) / 2, bucketsTouched
}

// Composite applies the stored weights as-is; upstream configuration
// validation owns the sum-to-1.0 invariant.
func Composite(output, quality, reliability, consistency float64, w Weights) float64 {
	return output*w.Output + quality*w.Quality + reliability*w.Reliability + consistency*w.Consistency
}

// Calculate runs all four pillars plus the composite over one dataset.
func Calculate(userID string, data Dataset, weights Weights) Result {
	windowDays := WindowDays(data.WindowStart, data.WindowEnd)
	workdays := Workdays(windowDays)

	output, totalPoints, targetPoints := OutputScore(data.CompletedTasks, weights.WeeklyTarget, windowDays)
	quality, _, reopenRate, reviewed, firstPass, reopened := QualityScore(data.CompletedTasks, data.EventsByTask)
	reliability, onTime := ReliabilityScore(data.CompletedTasks, data.CarryForwardEvents)
	consistency, bucketsTouched := ConsistencyScore(data.PlannedDays, workdays, data.CompletedTasks, data.AssignedKPIBuckets)

	reviewRate := 0.0
	if len(data.CompletedTasks) > 0 {
		reviewRate = float64(reviewed) / float64(len(data.CompletedTasks))
	}

	return Result{
		UserID:      userID,
		WindowStart: data.WindowStart,
		WindowEnd:   data.WindowEnd,
		Output:      output,
		Quality:     quality,
		Reliability: reliability,
		Consistency: consistency,
		Composite:   Composite(output, quality, reliability, consistency, weights),
		Meta: Metadata{
			PointsEarned:       totalPoints,
			PointsTarget:       targetPoints,
			CompletedTasks:     len(data.CompletedTasks),
			ReviewedTasks:      reviewed,
			FirstPassTasks:     firstPass,
			ReopenedTasks:      reopened,
			ReviewRate:         reviewRate,
			ReopenRate:         reopenRate,
			OnTimeTasks:        onTime,
			CarryForwardEvents: data.CarryForwardEvents,
			ActiveTasks:        data.ActiveTaskCount,
			PlannedDays:        data.PlannedDays,
			Workdays:           workdays,
			KPIBucketsTouched:  bucketsTouched,
			KPIBucketsAssigned: data.AssignedKPIBuckets,
		},
	}
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
