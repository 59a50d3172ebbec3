package scoring

import "time"

// Weights is the per-department pillar weighting. The administrative
// workflow that edits weights validates the sum-to-1.0 invariant before
// persisting; the engine applies them as stored without renormalizing.
type Weights struct {
	Output       float64 `json:"outputWeight"`
	Quality      float64 `json:"qualityWeight"`
	Reliability  float64 `json:"reliabilityWeight"`
	Consistency  float64 `json:"consistencyWeight"`
	WeeklyTarget float64 `json:"weeklyOutputTarget"`
}

func DefaultWeights() Weights {
	return Weights{
		Output:       DefaultOutputWeight,
		Quality:      DefaultQualityWeight,
		Reliability:  DefaultReliabilityWeight,
		Consistency:  DefaultConsistencyWeight,
		WeeklyTarget: DefaultWeeklyTarget,
	}
}

// CompletedTask is the slice of a task the pillar calculators need.
type CompletedTask struct {
	ID             string
	Size           string
	Deadline       *time.Time
	CompletedAt    time.Time
	RequiresReview bool
	KPIBucketID    string
}

// StatusEvent mirrors one row of the append-only transition log. Quality
// signals are derived by replaying these, never from mutable task fields.
type StatusEvent struct {
	TaskID     string
	FromStatus string
	ToStatus   string
	CreatedAt  time.Time
}

// Dataset is the window-bounded snapshot the engine computes from. It is
// assembled by the data fetcher; the engine itself performs no I/O.
type Dataset struct {
	WindowStart time.Time
	WindowEnd   time.Time

	CompletedTasks     []CompletedTask
	EventsByTask       map[string][]StatusEvent
	ActiveTaskCount    int
	CarryForwardEvents int
	PlannedDays        int
	AssignedKPIBuckets int
}

// Metadata is the diagnostic block dashboards consume. It is always fully
// populated, zeros included, even when pillar inputs are empty.
type Metadata struct {
	PointsEarned       float64 `json:"pointsEarned"`
	PointsTarget       float64 `json:"pointsTarget"`
	CompletedTasks     int     `json:"completedTasks"`
	ReviewedTasks      int     `json:"reviewedTasks"`
	FirstPassTasks     int     `json:"firstPassTasks"`
	ReopenedTasks      int     `json:"reopenedTasks"`
	ReviewRate         float64 `json:"reviewRate"`
	ReopenRate         float64 `json:"reopenRate"`
	OnTimeTasks        int     `json:"onTimeTasks"`
	CarryForwardEvents int     `json:"carryForwardEvents"`
	ActiveTasks        int     `json:"activeTasks"`
	PlannedDays        int     `json:"plannedDays"`
	Workdays           int     `json:"workdays"`
	KPIBucketsTouched  int     `json:"kpiBucketsTouched"`
	KPIBucketsAssigned int     `json:"kpiBucketsAssigned"`
}

// Result is one full calculation for one user.
type Result struct {
	UserID       string    `json:"userId"`
	WindowStart  time.Time `json:"windowStart"`
	WindowEnd    time.Time `json:"windowEnd"`
	Output       float64   `json:"outputScore"`
	Quality      float64   `json:"qualityScore"`
	Reliability  float64   `json:"reliabilityScore"`
	Consistency  float64   `json:"consistencyScore"`
	Composite    float64   `json:"compositeScore"`
	Meta         Metadata  `json:"meta"`
	CalculatedAt time.Time `json:"calculatedAt"`
}

// Snapshot is the frozen per-ISO-week copy used for trend charts.
type Snapshot struct {
	UserID         string    `json:"userId"`
	Year           int       `json:"year"`
	Week           int       `json:"week"`
	Output         float64   `json:"outputScore"`
	Quality        float64   `json:"qualityScore"`
	Reliability    float64   `json:"reliabilityScore"`
	Consistency    float64   `json:"consistencyScore"`
	Composite      float64   `json:"compositeScore"`
	CompletedTasks int       `json:"completedTasks"`
	ActiveTasks    int       `json:"activeTasks"`
	CalculatedAt   time.Time `json:"calculatedAt"`
}

// BatchResult reports a calculate-for-all run. A failing user never aborts
// the batch; failures are labeled with the user id.
type BatchResult struct {
	Processed int      `json:"processed"`
	Errors    []string `json:"errors"`
}

type UserRef struct {
	ID           string
	DepartmentID string
}
