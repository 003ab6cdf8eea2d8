package domain

import "time"

// NarrativeRequest is the body of POST /v1/reports/narrative.
type NarrativeRequest struct {
	Question string `json:"question"`
	Months   int    `json:"months,omitempty"`
}

// NarrativeResponse is the AI-generated commentary over a cash-flow report.
type NarrativeResponse struct {
	Narrative   string    `json:"narrative"`
	Highlights  []string  `json:"highlights,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// AgentRequest is the payload sent to the external reporting agent.
type AgentRequest struct {
	Question   string             `json:"question"`
	CashFlow   *CashFlowReport    `json:"cash_flow"`
	Projection *ProjectionReport  `json:"projection"`
	Budgets    []BudgetAssessment `json:"budgets,omitempty"`
}

// AgentResponse is the reporting agent's answer.
type AgentResponse struct {
	Narrative  string     `json:"narrative"`
	Highlights []string   `json:"highlights"`
	TokensUsed TokenUsage `json:"tokens_used"`
}

// TokenUsage reports LLM token consumption for a single agent call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NarrativeMetrics is a cumulative snapshot of narrative-generation
// activity, served by GET /v1/metrics/narrative.
type NarrativeMetrics struct {
	TotalRequests       int64   `json:"total_requests"`
	ErrorRate           float64 `json:"error_rate"`
	AvgTokensPerRequest float64 `json:"avg_tokens_per_request"`
	EstimatedCostUsd    float64 `json:"estimated_cost_usd"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	Period              string  `json:"period"`
}
