package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func TestSkills_FlattensPerSkill(t *testing.T) {
	citizens := []models.RawCitizen{
		{
			EntityID:    "p1",
			UserName:    "ada",
			Skills:      map[string]int{"1": 10, "2": 25},
			TotalSkills: 2,
			HighestLvl:  25,
			TotalLevel:  35,
			TotalXP:     48000,
		},
	}
	skillNames := map[string]string{"1": "Forestry", "2": "Mining"}

	records := Skills("s1", citizens, skillNames, testNow)
	require.Len(t, records, 2)

	assert.Equal(t, "p1-1", records[0].ID)
	assert.Equal(t, "Forestry", records[0].SkillName)
	assert.Equal(t, 10, records[0].SkillLevel)
	assert.Equal(t, "p1-2", records[1].ID)
	assert.Equal(t, "Mining", records[1].SkillName)

	// aggregates are denormalized onto every row
	for _, r := range records {
		assert.Equal(t, 2, r.TotalSkills)
		assert.Equal(t, 25, r.HighestLevel)
		assert.Equal(t, 35, r.TotalLevel)
		assert.Equal(t, float64(48000), r.TotalXP)
		assert.Equal(t, "s1", r.SettlementID)
		assert.Equal(t, "ada", r.PlayerName)
	}
}

func TestSkills_NameFallback(t *testing.T) {
	citizens := []models.RawCitizen{
		{EntityID: "p1", UserName: "ada", Skills: map[string]int{"42": 3}},
	}

	records := Skills("s1", citizens, nil, testNow)
	require.Len(t, records, 1)
	assert.Equal(t, "Skill 42", records[0].SkillName)
}

func TestSkills_NoSkillsNoRecords(t *testing.T) {
	citizens := []models.RawCitizen{
		{EntityID: "p1", UserName: "ada"},
	}

	records := Skills("s1", citizens, nil, testNow)
	assert.Empty(t, records)
}

func TestSkills_Idempotent(t *testing.T) {
	citizens := []models.RawCitizen{
		{EntityID: "p1", UserName: "ada", Skills: map[string]int{"1": 10, "2": 20, "3": 30}},
	}
	skillNames := map[string]string{"1": "Forestry"}

	first := Skills("s1", citizens, skillNames, testNow)
	second := Skills("s1", citizens, skillNames, testNow)
	assert.Equal(t, first, second)
}
