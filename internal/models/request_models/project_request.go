package request_models

type CreateProjectRequest struct {
	Title       string   `json:"title" binding:"required,min=3,max=200"`
	Description string   `json:"description" binding:"max=2000"`
	NeedType    string   `json:"need_type" binding:"required,oneof=works supplies services intellectual_services"`
	Urgency     string   `json:"urgency" binding:"omitempty,oneof=low normal high critical"`
	Tags        []string `json:"tags" binding:"max=20,dive,min=1,max=50"`
}

type ListProjectsRequest struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=10"`
}
