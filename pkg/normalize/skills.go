package normalize

import (
	"fmt"
	"sort"
	"time"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Skills flattens each citizen's skill map into one record per (citizen,
// skill) pair. Skill names resolve through skillNames with a "Skill {id}"
// fallback; the per-citizen aggregates are copied onto every emitted row.
func Skills(settlementID string, citizens []models.RawCitizen, skillNames map[string]string, now time.Time) []models.SettlementSkillRecord {
	records := make([]models.SettlementSkillRecord, 0)
	for _, citizen := range citizens {
		skillIDs := make([]string, 0, len(citizen.Skills))
		for id := range citizen.Skills {
			skillIDs = append(skillIDs, id)
		}
		sort.Strings(skillIDs)

		for _, skillID := range skillIDs {
			name, ok := skillNames[skillID]
			if !ok {
				name = fmt.Sprintf("Skill %s", skillID)
			}

			records = append(records, models.SettlementSkillRecord{
				ID:             fmt.Sprintf("%s-%s", citizen.EntityID, skillID),
				SettlementID:   settlementID,
				PlayerEntityID: citizen.EntityID,
				PlayerName:     citizen.UserName,
				SkillID:        skillID,
				SkillName:      name,
				SkillLevel:     citizen.Skills[skillID],
				TotalSkills:    citizen.TotalSkills,
				HighestLevel:   citizen.HighestLvl,
				TotalLevel:     citizen.TotalLevel,
				TotalXP:        citizen.TotalXP,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
		}
	}
	return records
}
