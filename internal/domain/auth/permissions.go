package auth

const (
	PermTasksRead         = "tasks.read"
	PermTasksWrite        = "tasks.write"
	PermTasksAssign       = "tasks.assign"
	PermTasksTransition   = "tasks.transition"
	PermTasksCarryForward = "tasks.carry_forward"
	PermPlanningRead      = "planning.read"
	PermPlanningWrite     = "planning.write"
	PermScoringRead       = "scoring.read"
	PermScoringRun        = "scoring.run"
	PermWeightsWrite      = "scoring.weights.write"
	PermReportsRead       = "reports.read"
	PermReportsExport     = "reports.export"
	PermSystemAdmin       = "admin.system"
)

var DefaultPermissions = []string{
	PermTasksRead,
	PermTasksWrite,
	PermTasksAssign,
	PermTasksTransition,
	PermTasksCarryForward,
	PermPlanningRead,
	PermPlanningWrite,
	PermScoringRead,
	PermScoringRun,
	PermWeightsWrite,
	PermReportsRead,
	PermReportsExport,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermTasksRead,
		PermTasksWrite,
		PermTasksTransition,
		PermTasksCarryForward,
		PermPlanningRead,
		PermPlanningWrite,
		PermScoringRead,
		PermReportsRead,
	},
	RoleManager: {
		PermTasksRead,
		PermTasksWrite,
		PermTasksAssign,
		PermTasksTransition,
		PermTasksCarryForward,
		PermPlanningRead,
		PermPlanningWrite,
		PermScoringRead,
		PermReportsRead,
		PermReportsExport,
	},
	RoleDepartmentHead: {
		PermTasksRead,
		PermTasksWrite,
		PermTasksAssign,
		PermTasksTransition,
		PermTasksCarryForward,
		PermPlanningRead,
		PermPlanningWrite,
		PermScoringRead,
		PermScoringRun,
		PermWeightsWrite,
		PermReportsRead,
		PermReportsExport,
	},
	RoleAdmin: {
		PermTasksRead,
		PermTasksWrite,
		PermTasksAssign,
		PermTasksTransition,
		PermTasksCarryForward,
		PermPlanningRead,
		PermPlanningWrite,
		PermScoringRead,
		PermScoringRun,
		PermWeightsWrite,
		PermReportsRead,
		PermReportsExport,
		PermSystemAdmin,
	},
}
