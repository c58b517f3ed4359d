package poeninja

import "github.com/wraeclast/stashpricer/internal/domain"

// itemOverviewResponse is the /itemoverview payload (uniques, gems, cards,
// scarabs in recent leagues).
type itemOverviewResponse struct {
	Lines []domain.ItemLine `json:"lines"`
}

// currencyOverviewResponse is the /currencyoverview payload (currency,
// fragments, oils, essences).
type currencyOverviewResponse struct {
	Lines []domain.CurrencyLine `json:"lines"`
}

// uniqueOverviewTypes are the equipment classes whose lines together make up
// the unique-item category.
var uniqueOverviewTypes = []string{
	"UniqueArmour",
	"UniqueWeapon",
	"UniqueAccessory",
	"UniqueFlask",
	"UniqueJewel",
	"UniqueMap",
}

// scarabAlternateTypes are currency categories scarabs have been filed under
// in past leagues, tried after the two primary endpoints.
var scarabAlternateTypes = []string{"Artifact", "Memory", "Misc"}
