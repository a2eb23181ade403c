package ratetable

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/richxcame/visit-pricing/pkg/models"
	"github.com/richxcame/visit-pricing/pkg/validation"
)

var (
	// ErrLocationNotInTable means the location has no fixed-rate entry
	ErrLocationNotInTable = errors.New("location not in fixed rate table")
	// ErrOutOfRange means the distance exceeds the largest configured threshold
	ErrOutOfRange = errors.New("distance outside rate table")
	// ErrUnknownTier means the table has no schedule for the tier
	ErrUnknownTier = errors.New("tier not in rate table")
)

// Config is the static description of a rate table.
// Every tier shares the same ordered threshold list; Prices[tier][i]
// applies to distances up to and including Thresholds[i].
type Config struct {
	ReferenceDistances map[string]float64        `json:"reference_distances" validate:"required,min=1,dive,keys,required,endkeys,gte=0"`
	Thresholds         []float64                 `json:"thresholds" validate:"required,min=1,ascending,dive,gt=0"`
	Prices             map[models.Tier][]float64 `json:"prices" validate:"required,min=1,dive,keys,service_tier,endkeys,required"`
	Floors             map[models.Tier]float64   `json:"floors" validate:"required,min=1,dive,keys,service_tier,endkeys,gte=0"`
}

// Table answers reference distance and price lookups. It is immutable after New.
type Table struct {
	distances  map[string]float64
	thresholds []float64
	prices     map[models.Tier][]float64
	floors     map[models.Tier]float64
}

// New validates cfg and builds a Table from it
func New(cfg Config) (*Table, error) {
	if err := validation.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid rate table: %w", err)
	}

	for tier, prices := range cfg.Prices {
		if len(prices) != len(cfg.Thresholds) {
			return nil, fmt.Errorf("invalid rate table: tier %s has %d prices for %d thresholds", tier, len(prices), len(cfg.Thresholds))
		}
		for i := 1; i < len(prices); i++ {
			if prices[i] < prices[i-1] {
				return nil, fmt.Errorf("invalid rate table: tier %s price decreases at threshold %g", tier, cfg.Thresholds[i])
			}
		}
		if _, ok := cfg.Floors[tier]; !ok {
			return nil, fmt.Errorf("invalid rate table: tier %s has no floor", tier)
		}
	}

	standard, hasStandard := cfg.Prices[models.TierStandard]
	premium, hasPremium := cfg.Prices[models.TierPremium]
	if hasStandard && hasPremium {
		for i := range standard {
			if premium[i] < standard[i] {
				return nil, fmt.Errorf("invalid rate table: premium price below standard at threshold %g", cfg.Thresholds[i])
			}
		}
	}

	t := &Table{
		distances:  make(map[string]float64, len(cfg.ReferenceDistances)),
		thresholds: append([]float64(nil), cfg.Thresholds...),
		prices:     make(map[models.Tier][]float64, len(cfg.Prices)),
		floors:     make(map[models.Tier]float64, len(cfg.Floors)),
	}
	for location, km := range cfg.ReferenceDistances {
		t.distances[NormalizeLocation(location)] = km
	}
	for tier, prices := range cfg.Prices {
		t.prices[tier] = append([]float64(nil), prices...)
	}
	for tier, floor := range cfg.Floors {
		t.floors[tier] = floor
	}

	return t, nil
}

// NormalizeLocation case-folds and trims a location name for table lookups
func NormalizeLocation(location string) string {
	return strings.ToUpper(strings.TrimSpace(location))
}

// ReferenceDistance returns the fixed reference distance in km for a location
func (t *Table) ReferenceDistance(location string) (float64, error) {
	key := NormalizeLocation(location)
	km, ok := t.distances[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrLocationNotInTable, key)
	}
	return km, nil
}

// Price returns the price of the first threshold that covers km
func (t *Table) Price(km float64, tier models.Tier) (float64, error) {
	prices, ok := t.prices[tier]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTier, tier)
	}

	i := sort.SearchFloat64s(t.thresholds, km)
	if i == len(t.thresholds) {
		return 0, fmt.Errorf("%w: %g km exceeds %g km", ErrOutOfRange, km, t.thresholds[len(t.thresholds)-1])
	}
	return prices[i], nil
}

// FullServiceValue prices a visit at its location's reference distance
func (t *Table) FullServiceValue(location string, tier models.Tier) (float64, error) {
	km, err := t.ReferenceDistance(location)
	if err != nil {
		return 0, err
	}
	return t.Price(km, tier)
}

// Floor returns the flat minimum charged for an on-route visit
func (t *Table) Floor(tier models.Tier) (float64, error) {
	floor, ok := t.floors[tier]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTier, tier)
	}
	return floor, nil
}

// Locations returns the normalized location names, sorted
func (t *Table) Locations() []string {
	out := make([]string, 0, len(t.distances))
	for k := range t.distances {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
