package scenario

import "github.com/couchcryptid/humidity-adviser/internal/domain"

// OneBedFlatName is the registry name of the single-occupant flat.
const OneBedFlatName = domain.DefaultScenario

// OneBedFlat is a single occupant who works from home on weekdays and is out
// on weekend afternoons. Weekday shower at 07:00 and dinner from 18:00;
// weekend shower at 09:00 and no cooking.
//
// The shower is modelled as the :00 and :15 samples, so its duration follows
// the sampling resolution.
func OneBedFlat() Scenario {
	return Scenario{
		Name:        OneBedFlatName,
		DisplayName: "1 Bed Flat",
		Description: "Single occupant: weekday shower at 07:00 and dinner at 18:00, weekend shower at 09:00.",
		Factory: FromSources(
			Source{
				Name: "Breathing (1 person)",
				Rate: 80,
				Unit: domain.GramsPerHour,
				Rules: []Rule{
					{Days: Weekdays, Active: AllDay()},
					{Days: Weekends, Active: Before(12)},
				},
			},
			Source{
				Name: "Shower",
				Rate: 1200,
				Unit: domain.GramsPerHour,
				Rules: []Rule{
					{Days: Weekdays, Active: At(7, 0, 15)},
					{Days: Weekends, Active: At(9, 0, 15)},
				},
			},
			Source{
				Name: "Cooking (Dinner)",
				Rate: 600,
				Unit: domain.GramsPerHour,
				Rules: []Rule{
					{Days: Weekdays, Active: Between(18, 19)},
				},
			},
		),
	}
}
