package model

import (
	"time"
)

const (
	ChangeCreateMission     = "CREATE_MISSION"
	ChangeActivateMission   = "ACTIVATE_MISSION"
	ChangeAssignOperator    = "ASSIGN_OPERATOR"
	ChangeCompleteMission   = "COMPLETE_MISSION"
	ChangeSubmitChallenge   = "SUBMIT_CHALLENGE"
	ChangeModerateChallenge = "MODERATE_CHALLENGE"
	ChangeResubmitChallenge = "RESUBMIT_CHALLENGE"
	ChangeWithdrawChallenge = "WITHDRAW_CHALLENGE"
)

// Change is an audit record of a lifecycle or moderation transition.
type Change struct {
	ID           uint   `gorm:"primarykey"`
	Type         string `gorm:"index;not null"`
	MissionUID   string `gorm:"index;not null;default:''"`
	ChallengeUID string `gorm:"index;not null;default:''"`
	ActorLogin   string `gorm:"not null;default:''"`
	Detail       string `gorm:"not null;default:''"`
	CreatedAt    time.Time
}

type ChangeDTO struct {
	Type         string    `json:"type"`
	MissionUID   string    `json:"mission_uid,omitempty"`
	ChallengeUID string    `json:"challenge_uid,omitempty"`
	Actor        string    `json:"actor,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c *Change) DTO() *ChangeDTO {
	if c == nil {
		return nil
	}

	return &ChangeDTO{
		Type:         c.Type,
		MissionUID:   c.MissionUID,
		ChallengeUID: c.ChallengeUID,
		Actor:        c.ActorLogin,
		Detail:       c.Detail,
		CreatedAt:    c.CreatedAt,
	}
}
