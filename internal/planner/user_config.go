package planner

import (
	"github.com/hogwarts-cloud/capturectl/internal/models"
	"github.com/samber/lo"
)

// ResolveUserConfig fills every field from the overrides first, then the
// previously stored config, then the fixed defaults.
func ResolveUserConfig(overrides models.UserConfigOverrides, previous *models.UserConfig) models.UserConfig {
	cfg := models.UserConfig{
		ExpectedTraffic: MinTraffic,
		SpiDays:         DefaultSpiDays,
		HistoryDays:     DefaultHistoryDays,
		Replicas:        DefaultReplicas,
		PcapDays:        DefaultPcapDays,
	}

	if previous != nil {
		cfg = *previous
		if previous.ExtraTags != nil {
			cfg.ExtraTags = lo.Assign(previous.ExtraTags)
		}
	}

	if overrides.ExpectedTraffic != nil {
		cfg.ExpectedTraffic = *overrides.ExpectedTraffic
	}
	if overrides.SpiDays != nil {
		cfg.SpiDays = *overrides.SpiDays
	}
	if overrides.HistoryDays != nil {
		cfg.HistoryDays = *overrides.HistoryDays
	}
	if overrides.Replicas != nil {
		cfg.Replicas = *overrides.Replicas
	}
	if overrides.PcapDays != nil {
		cfg.PcapDays = *overrides.PcapDays
	}
	if overrides.ExtraTags != nil {
		cfg.ExtraTags = lo.Assign(overrides.ExtraTags)
	}

	return cfg
}
