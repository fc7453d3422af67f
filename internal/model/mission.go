package model

import (
	"time"
)

const (
	MissionDraft     = "DRAFT"
	MissionActive    = "ACTIVE"
	MissionCompleted = "COMPLETED"
)

var MissionStatuses = []string{MissionDraft, MissionActive, MissionCompleted}

type Mission struct {
	ID               uint    `gorm:"primarykey"`
	UID              string  `gorm:"uniqueIndex;not null"`
	Title            string  `gorm:"not null"`
	Description      string  `gorm:"not null;default:''"`
	Status           string  `gorm:"index;not null"`
	SchoolLogin      string  `gorm:"index;not null"`
	SchoolName       string  `gorm:"not null;default:''"`
	AssignedOperator *string `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type MissionDTO struct {
	UID              string    `json:"uid"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Status           string    `json:"status"`
	School           string    `json:"school"`
	SchoolName       string    `json:"school_name,omitempty"`
	AssignedOperator string    `json:"assigned_operator,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type MissionPostDTO struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description" validate:"required"`
}

// NextMissionStatus tells whether moving a mission from one status to
// another is a legal lifecycle step. The machine is linear: DRAFT ->
// ACTIVE -> COMPLETED, nothing moves backwards.
func NextMissionStatus(from, to string) bool {
	switch from {
	case MissionDraft:
		return to == MissionActive
	case MissionActive:
		return to == MissionCompleted
	case MissionCompleted:
		return false
	default:
		return false
	}
}

func (m *Mission) IsAssigned() bool {
	return m != nil && m.AssignedOperator != nil && *m.AssignedOperator != ""
}

func (m *Mission) IsAssignedTo(login string) bool {
	return m.IsAssigned() && *m.AssignedOperator == login
}

func (m *Mission) IsOwnedBy(login string) bool {
	return m != nil && m.SchoolLogin == login
}

func (m *Mission) DTO() *MissionDTO {
	if m == nil {
		return nil
	}

	dto := &MissionDTO{
		UID:         m.UID,
		Title:       m.Title,
		Description: m.Description,
		Status:      m.Status,
		School:      m.SchoolLogin,
		SchoolName:  m.SchoolName,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	if m.AssignedOperator != nil {
		dto.AssignedOperator = *m.AssignedOperator
	}

	return dto
}
