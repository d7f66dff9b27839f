package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// ProjectFile is the top-level JSON structure for project import and
// export. Dates are YYYY-MM-DD strings.
type ProjectFile struct {
	Project    ProjectImport     `json:"project"`
	Holidays   []HolidayImport   `json:"holidays,omitempty"`
	Resources  []ResourceImport  `json:"resources,omitempty"`
	Phases     []PhaseImport     `json:"phases"`
	Milestones []MilestoneImport `json:"milestones,omitempty"`
}

// ProjectImport defines the project-level fields in the import file.
type ProjectImport struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
}

type HolidayImport struct {
	Date   string `json:"date"`
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
}

// ResourceImport defines a person or role. When hourly_rate is omitted a
// billable resource is priced from its designation.
type ResourceImport struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Designation string   `json:"designation,omitempty"`
	Category    string   `json:"category,omitempty"`
	HourlyRate  *float64 `json:"hourly_rate,omitempty"`
	Billable    *bool    `json:"billable,omitempty"`
}

// PhaseImport defines a phase. Standard phases carry end_date; ongoing
// support phases carry support_years instead.
type PhaseImport struct {
	ID           string       `json:"id,omitempty"`
	Name         string       `json:"name"`
	Kind         string       `json:"kind,omitempty"`
	StartDate    string       `json:"start_date"`
	EndDate      *string      `json:"end_date,omitempty"`
	SupportYears *int         `json:"support_years,omitempty"`
	Color        string       `json:"color,omitempty"`
	Dependencies []string     `json:"dependencies,omitempty"`
	Collapsed    bool         `json:"collapsed,omitempty"`
	RACI         []RACIImport `json:"raci,omitempty"`
	Tasks        []TaskImport `json:"tasks,omitempty"`
}

type TaskImport struct {
	ID           string             `json:"id,omitempty"`
	Name         string             `json:"name"`
	StartDate    string             `json:"start_date"`
	EndDate      string             `json:"end_date"`
	Dependencies []string           `json:"dependencies,omitempty"`
	Assignments  []AssignmentImport `json:"assignments,omitempty"`
	ParentTaskID *string            `json:"parent_task_id,omitempty"`
	RACI         []RACIImport       `json:"raci,omitempty"`
}

type AssignmentImport struct {
	ResourceID        string  `json:"resource_id"`
	AllocationPercent float64 `json:"allocation_percent"`
}

type RACIImport struct {
	ResourceID string `json:"resource_id"`
	Role       string `json:"role"`
}

type MilestoneImport struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Date    string `json:"date"`
	PhaseID string `json:"phase_id,omitempty"`
}

// LoadProjectFile reads and parses a project JSON file.
func LoadProjectFile(path string) (*ProjectFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProjectFile(data)
}

// ParseProjectFile decodes a project JSON document without validating it.
func ParseProjectFile(data []byte) (*ProjectFile, error) {
	var f ProjectFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing project file: %w", err)
	}
	return &f, nil
}
