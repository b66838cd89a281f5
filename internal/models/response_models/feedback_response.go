package response_models

type FeedbackResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
	ModuleID  string `json:"module_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type ModuleRating struct {
	ModuleID string  `json:"module_id"`
	Average  float64 `json:"average"`
	Count    int64   `json:"count"`
}

type FeedbackReport struct {
	Items    []FeedbackResponse `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Modules  []ModuleRating     `json:"modules"`
}
