package request_models

type AddFeedbackRequest struct {
	ModuleID string `json:"module_id" binding:"required"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment" binding:"max=2000"`
}

// ListFeedbackRequest filters the admin feedback report. An empty Module lists every module.
type ListFeedbackRequest struct {
	Module   string `form:"module"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=10"`
}
