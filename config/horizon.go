package config

import (
	"time"

	"github.com/devskill-org/ems-planner/horizon"
)

// ToHorizonConfig converts the ems section into a horizon.Config. loc
// is resolved by the caller (typically via time.LoadLocation(ems.location)).
func (r *Root) ToHorizonConfig(loc *time.Location) horizon.Config {
	return horizon.Config{
		TimestepMinutes:        r.EMS.TimestepMinutes,
		HighResTimestepMinutes: r.EMS.HighResTimestepMinutes,
		HighResHorizonMinutes:  r.EMS.HighResHorizonMinutes,
		MinHorizonMinutes:      r.EMS.MinHorizonMinutes,
		Location:               loc,
	}
}
