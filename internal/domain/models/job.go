package models

// AnalysisJob is an asynchronous analysis request read from Kafka.
type AnalysisJob struct {
	JobID      string `json:"job_id"`
	Symbol     string `json:"symbol"`
	PeriodDays int    `json:"period_days"`
}

// AnalysisJobResult is published once a job finishes, successfully or not.
type AnalysisJobResult struct {
	JobID    string    `json:"job_id"`
	Symbol   string    `json:"symbol"`
	Status   string    `json:"status"`
	Error    string    `json:"error,omitempty"`
	Analysis *Analysis `json:"analysis,omitempty"`
}

const (
	JobStatusOK    = "ok"
	JobStatusError = "error"
)
