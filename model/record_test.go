package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeOutcomesPreservesOrderAndLength(t *testing.T) {
	base := []Outcome{
		{ExternalID: "user_1", Status: StatusSuccess},
		{ExternalID: "user_2", Status: StatusCustomerNotFound},
		{ExternalID: "user_3", Status: StatusSuccess},
	}
	upgrades := map[string]Outcome{
		"user_1": {ExternalID: "user_1", Status: StatusSuccess, TeamID: "team_1"},
		"user_3": {ExternalID: "user_3", Status: StatusTeamCreationFailed, TeamErrorMessage: "boom"},
	}

	merged := MergeOutcomes(base, upgrades)
	require.Len(t, merged, 3)

	assert.Equal(t, "team_1", merged[0].TeamID)
	// Entries without an upgrade come through untouched.
	assert.Equal(t, base[1], merged[1])
	assert.Equal(t, StatusTeamCreationFailed, merged[2].Status)

	// The input slice is never mutated.
	assert.Empty(t, base[0].TeamID)
}

func TestMergeOutcomesIgnoresUnknownUpgrades(t *testing.T) {
	base := []Outcome{{ExternalID: "user_1", Status: StatusSuccess}}
	merged := MergeOutcomes(base, map[string]Outcome{
		"stranger": {ExternalID: "stranger", Status: StatusSuccess},
	})
	require.Len(t, merged, 1)
	assert.Equal(t, base[0], merged[0])
}

func TestMergeOutcomesEmptyBase(t *testing.T) {
	assert.Empty(t, MergeOutcomes(nil, map[string]Outcome{"x": {}}))
}
