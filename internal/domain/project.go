package domain

import "time"

// Project is the summary view returned in lists.
type Project struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	OwnerID     string `db:"owner_id" json:"owner_id"`
}

// ProjectInfo carries the planning inputs and the latest prediction.
type ProjectInfo struct {
	Project
	DueDate                 Date      `db:"due_date" json:"due_date"`
	CertaintyPercent        float64   `db:"certainty_percent" json:"certainty_percent"`
	PredictedDeadline       Date      `db:"predicted_deadline" json:"predicted_deadline"`
	AvailableHours          float64   `db:"available_hours" json:"available_hours"`
	SumExperience           float64   `db:"sum_experience" json:"sum_experience"`
	ExternalRiskProbability float64   `db:"external_risk_probability" json:"external_risk_probability"`
	CreatedAt               time.Time `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time `db:"updated_at" json:"updated_at"`
}

// NewProject - payload for project creation
type NewProject struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	DueDate     Date   `json:"due_date" binding:"required"`
}

// ProjectPatch is a partial project update.
type ProjectPatch struct {
	Name                    *string  `json:"name,omitempty"`
	Description             *string  `json:"description,omitempty"`
	DueDate                 *Date    `json:"due_date,omitempty"`
	AvailableHours          *float64 `json:"available_hours,omitempty"`
	SumExperience           *float64 `json:"sum_experience,omitempty"`
	ExternalRiskProbability *float64 `json:"external_risk_probability,omitempty"`
}

// Validate checks field-level constraints of the patch.
func (p ProjectPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return Invalid("project name cannot be empty")
	}
	if p.AvailableHours != nil && *p.AvailableHours < 0 {
		return Invalid("available hours cannot be negative")
	}
	if p.SumExperience != nil && *p.SumExperience < 0 {
		return Invalid("sum experience cannot be negative")
	}
	if p.ExternalRiskProbability != nil && (*p.ExternalRiskProbability < 0 || *p.ExternalRiskProbability > 1) {
		return Invalid("external risk probability must be within [0, 1]")
	}
	return nil
}

// TouchesPrediction reports whether the patch changes an input of the
// deadline prediction.
func (p ProjectPatch) TouchesPrediction() bool {
	return p.DueDate != nil || p.AvailableHours != nil || p.SumExperience != nil || p.ExternalRiskProbability != nil
}

// Apply copies the set fields of the patch onto info.
func (p ProjectPatch) Apply(info *ProjectInfo) {
	if p.Name != nil {
		info.Name = *p.Name
	}
	if p.Description != nil {
		info.Description = *p.Description
	}
	if p.DueDate != nil {
		info.DueDate = *p.DueDate
	}
	if p.AvailableHours != nil {
		info.AvailableHours = *p.AvailableHours
	}
	if p.SumExperience != nil {
		info.SumExperience = *p.SumExperience
	}
	if p.ExternalRiskProbability != nil {
		info.ExternalRiskProbability = *p.ExternalRiskProbability
	}
}

// MemberByEmail - payload for adding a member or changing the owner
type MemberByEmail struct {
	ProjectID string `json:"project_id" binding:"required,uuid"`
	UserEmail string `json:"user_email" binding:"required,email"`
}

// MemberRef - payload for removing a member
type MemberRef struct {
	ProjectID string `json:"project_id" binding:"required,uuid"`
	UserID    string `json:"user_id" binding:"required,uuid"`
}
