package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextMissionStatus(t *testing.T) {
	require.True(t, NextMissionStatus(MissionDraft, MissionActive))
	require.True(t, NextMissionStatus(MissionActive, MissionCompleted))

	require.False(t, NextMissionStatus(MissionDraft, MissionCompleted))
	require.False(t, NextMissionStatus(MissionActive, MissionDraft))
	require.False(t, NextMissionStatus(MissionCompleted, MissionActive))
	require.False(t, NextMissionStatus(MissionCompleted, MissionDraft))
	require.False(t, NextMissionStatus("bogus", MissionActive))
}

func TestMission_DTO(t *testing.T) {
	o := "op1"
	m := &Mission{UID: "m1", Title: "t", Status: MissionActive, SchoolLogin: "s1", AssignedOperator: &o}

	dto := m.DTO()
	require.Equal(t, "op1", dto.AssignedOperator)
	require.Equal(t, "s1", dto.School)

	m.AssignedOperator = nil
	require.Empty(t, m.DTO().AssignedOperator)
}

func TestValidate(t *testing.T) {
	err := Validate(&MissionPostDTO{})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
	require.Equal(t, "title", verr.Fields[0].Field)

	require.NoError(t, Validate(&MissionPostDTO{Title: "Atelier", Description: "d"}))

	err = Validate(&ModerationDTO{Decision: "MAYBE"})
	require.Error(t, err)
}
