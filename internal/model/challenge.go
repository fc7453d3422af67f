package model

import (
	"time"
)

const (
	ChallengePending  = "PENDING"
	ChallengeApproved = "APPROVED"
	ChallengeRejected = "REJECTED"
)

var ChallengeStatuses = []string{ChallengePending, ChallengeApproved, ChallengeRejected}

type Challenge struct {
	ID               uint   `gorm:"primarykey"`
	UID              string `gorm:"uniqueIndex;not null"`
	Title            string `gorm:"not null"`
	Description      string `gorm:"not null;default:''"`
	ShortDescription string `gorm:"not null;default:''"`
	Thematique       string `gorm:"index;not null;default:''"`
	Duration         string `gorm:"not null;default:''"`
	TargetAudience   string `gorm:"not null;default:''"`
	OperatorLogin    string `gorm:"index;not null"`
	Status           string `gorm:"index;not null"`
	RejectionReason  string `gorm:"not null;default:''"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type ChallengeDTO struct {
	UID              string    `json:"uid"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	ShortDescription string    `json:"short_description,omitempty"`
	Thematique       string    `json:"thematique,omitempty"`
	Duration         string    `json:"duration,omitempty"`
	TargetAudience   string    `json:"target_audience,omitempty"`
	Operator         string    `json:"operator"`
	Status           string    `json:"status"`
	RejectionReason  string    `json:"rejection_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ChallengePostDTO struct {
	Title            string `json:"title" validate:"required,min=3"`
	Description      string `json:"description" validate:"required"`
	ShortDescription string `json:"short_description"`
	Thematique       string `json:"thematique" validate:"required"`
	Duration         string `json:"duration"`
	TargetAudience   string `json:"target_audience"`
}

type ChallengePatchDTO struct {
	Title            *string `json:"title,omitempty" validate:"omitempty,min=3"`
	Description      *string `json:"description,omitempty"`
	ShortDescription *string `json:"short_description,omitempty"`
	Thematique       *string `json:"thematique,omitempty"`
	Duration         *string `json:"duration,omitempty"`
	TargetAudience   *string `json:"target_audience,omitempty"`
}

type ModerationDTO struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
	Reason   string `json:"reason"`
}

func (c *Challenge) IsAuthoredBy(login string) bool {
	return c != nil && c.OperatorLogin == login
}

// Locked reports whether the challenge is frozen for its author.
// Approval locks the content, moderation owns it from then on.
func (c *Challenge) Locked() bool {
	return c != nil && c.Status == ChallengeApproved
}

func (c *Challenge) DTO() *ChallengeDTO {
	if c == nil {
		return nil
	}

	return &ChallengeDTO{
		UID:              c.UID,
		Title:            c.Title,
		Description:      c.Description,
		ShortDescription: c.ShortDescription,
		Thematique:       c.Thematique,
		Duration:         c.Duration,
		TargetAudience:   c.TargetAudience,
		Operator:         c.OperatorLogin,
		Status:           c.Status,
		RejectionReason:  c.RejectionReason,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}
