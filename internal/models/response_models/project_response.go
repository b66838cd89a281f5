package response_models

type ProjectResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	NeedType      string   `json:"need_type"`
	Urgency       string   `json:"urgency"`
	Status        string   `json:"status"`
	Tags          []string `json:"tags"`
	CreatedAt     int64    `json:"created_at"`
	UpdatedAt     int64    `json:"updated_at"`
	ExportReadyAt *int64   `json:"export_ready_at,omitempty"`
}

type ProjectListResponse struct {
	Items    []ProjectResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

type SectionResponse struct {
	ModuleID string `json:"module_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

type ExportResponse struct {
	ProjectID string `json:"project_id"`
	Filename  string `json:"filename"`
	Markdown  string `json:"markdown"`
}
