package response_models

import "time"

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// "day" | "week" | "month"
	Interval string `json:"interval"`
	// Optional: timezone used for bucketing (defaults to UTC if empty)
	Timezone string `json:"timezone,omitempty"`
}

type KPIBlock struct {
	TotalProjects          int64 `json:"total_projects"`
	NewProjects            int64 `json:"new_projects"`
	DraftProjects          int64 `json:"draft_projects"`
	InProgressProjects     int64 `json:"in_progress_projects"`
	ReadyForExportProjects int64 `json:"ready_for_export_projects"`
	ArchivedProjects       int64 `json:"archived_projects"`
	ValidatedSections      int64 `json:"validated_sections"`
	ExportReadyInPeriod    int64 `json:"export_ready_in_period"`

	CompletionPct float64 `json:"completion_pct"` // ready / (total - archived) * 100
}

type SeriesPoint struct {
	Bucket time.Time `json:"bucket"`
	Value  int64     `json:"value"`
}

type CountSeries struct {
	Points []SeriesPoint `json:"points"`
	Total  int64         `json:"total"`
}

type NeedTypeMixItem struct {
	NeedType string  `json:"need_type"`
	Count    int64   `json:"count"`
	Percent  float64 `json:"percent"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

type DashboardReport struct {
	Range            TimeRange         `json:"range"`
	KPIs             KPIBlock          `json:"kpis"`
	NewProjects      CountSeries       `json:"new_projects"`
	ValidatedModules CountSeries       `json:"validated_modules"`
	NeedTypeMix      []NeedTypeMixItem `json:"need_type_mix"`
	TopTags          []TagCount        `json:"top_tags"`
	RecentProjects   []ProjectResponse `json:"recent_projects"`
}
