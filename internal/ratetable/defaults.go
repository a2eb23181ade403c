package ratetable

import "github.com/richxcame/visit-pricing/pkg/models"

// DefaultConfig returns the Greater Toronto Area table used when no file is configured
func DefaultConfig() Config {
	return Config{
		ReferenceDistances: map[string]float64{
			"TORONTO":     1,
			"MISSISSAUGA": 30,
			"BRAMPTON":    45,
			"HAMILTON":    70,
			"OSHAWA":      60,
			"SCARBOROUGH": 20,
			"MARKHAM":     35,
		},
		Thresholds: []float64{50, 100, 150, 200, 250, 300, 350, 400},
		Prices: map[models.Tier][]float64{
			models.TierStandard: {140, 260, 270, 364, 374, 384, 540, 550},
			models.TierPremium:  {290, 384, 395, 560, 572, 580, 590, 600},
		},
		Floors: map[models.Tier]float64{
			models.TierStandard: 140,
			models.TierPremium:  290,
		},
	}
}

// Default builds the table from DefaultConfig
func Default() *Table {
	t, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return t
}
