package domain

// PipelineJob is an asynchronous run request. An empty Step means a full run
// over the canonical order.
type PipelineJob struct {
	ID    string `json:"id"`
	Step  Step   `json:"step,omitempty"`
	Force bool   `json:"force"`
}
