package scoring

const (
	// DefaultWindowDays is the trailing window scores are computed over.
	DefaultWindowDays = 28

	DefaultOutputWeight      = 0.35
	DefaultQualityWeight     = 0.25
	DefaultReliabilityWeight = 0.25
	DefaultConsistencyWeight = 0.15
	DefaultWeeklyTarget      = 15.0

	// Per-size point weights for the output pillar. Size, not priority,
	// drives points: priority reflects urgency, not effort.
	PointsEasy      = 1.0
	PointsMedium    = 2.0
	PointsDifficult = 3.0

	// NeutralReliability applies when a user has no completions in the
	// window; inactivity is neither rewarded nor punished.
	NeutralReliability = 50.0

	CarryForwardPenaltyPerEvent = 5.0
	CarryForwardPenaltyCap      = 30.0
)
