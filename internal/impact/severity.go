package impact

// Aggregate factor thresholds.
const (
	TaskCountFactor     = 10
	ResourceCountFactor = 5
	CostFactor          = 50000.0
)

// Factor names reported in Report.Factors.
const (
	FactorManyTasks       = "more than 10 tasks"
	FactorManyResources   = "more than 5 resources"
	FactorDependentPhases = "dependent phases"
	FactorDependentTasks  = "dependent tasks"
	FactorHighCost        = "cost above 50,000"
	FactorSupportTasks    = "ongoing-support tasks"
)

type factorInput struct {
	taskCount       int
	resourceCount   int
	dependentPhases int
	dependentTasks  int
	cost            float64
	supportTasks    bool
}

// factors lists the aggregate factors that hold, in a fixed order.
func factors(in factorInput) []string {
	var out []string
	if in.taskCount > TaskCountFactor {
		out = append(out, FactorManyTasks)
	}
	if in.resourceCount > ResourceCountFactor {
		out = append(out, FactorManyResources)
	}
	if in.dependentPhases > 0 {
		out = append(out, FactorDependentPhases)
	}
	if in.dependentTasks > 0 {
		out = append(out, FactorDependentTasks)
	}
	if in.cost > CostFactor {
		out = append(out, FactorHighCost)
	}
	if in.supportTasks {
		out = append(out, FactorSupportTasks)
	}
	return out
}

// AggregateSeverity maps a factor count to a severity: 0 is Low, 1-2 Medium,
// 3-4 High and 5 or more Critical.
func AggregateSeverity(n int) Severity {
	switch {
	case n >= 5:
		return Critical
	case n >= 3:
		return High
	case n >= 1:
		return Medium
	}
	return Low
}
