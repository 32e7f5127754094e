package approval

// ChangeType classifies a proposed change.
type ChangeType string

const (
	ChangeCreate ChangeType = "create"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// Change describes one proposed field change in a dry-run preview.
//
// CurrentValue and NewValue are pre-rendered display strings, not raw values.
// Formatting happens at build time so the content hash stays stable and the
// preview shown to the user is exactly what the hash attests to.
type Change struct {
	Resource     string     `json:"resource"`
	ResourceID   string     `json:"resourceId"`
	Field        string     `json:"field"`
	CurrentValue string     `json:"currentValue"`
	NewValue     string     `json:"newValue"`
	Type         ChangeType `json:"changeType"`
}

// FinancialImpact estimates the cost effect of a proposed change.
// Advisory only; never part of the content hash.
type FinancialImpact struct {
	CurrentDailySpend      *float64 `json:"currentDailySpend,omitempty"`
	EstimatedNewDailySpend *float64 `json:"estimatedNewDailySpend,omitempty"`
	DailyDifference        *float64 `json:"dailyDifference,omitempty"`
	MonthlyDifference      *float64 `json:"monthlyDifference,omitempty"`
	PercentageChange       *float64 `json:"percentageChange,omitempty"`
}
