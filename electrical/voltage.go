package electrical

import (
	"fmt"
	"math"

	"lighting-plan-server/models"
)

// Drop returns the voltage drop in percent of the supply voltage for a load
// of powerW watts at distanceM meters of cable. The factor 2 accounts for
// the feed and return conductors.
func Drop(cable Cable, voltage, powerFactor, distanceM, powerW float64) (float64, error) {
	if err := validate(voltage, powerFactor); err != nil {
		return 0, err
	}
	if distanceM == 0 || powerW == 0 {
		return 0, nil
	}
	rPerM := cable.ResistanceR / 1000
	xPerM := cable.ReactanceX / 1000
	sinPhi := math.Sin(math.Acos(powerFactor))

	current := powerW / (voltage * powerFactor)
	dropV := 2 * distanceM * current * (rPerM*powerFactor + xPerM*sinPhi)
	return dropV / voltage * 100, nil
}

func validate(voltage, powerFactor float64) error {
	if voltage <= 0 {
		return fmt.Errorf("%w: voltage %.2f must be positive", ErrInvalidParams, voltage)
	}
	if powerFactor <= 0 || powerFactor > 1 {
		return fmt.Errorf("%w: power factor %.3f must be in (0, 1]", ErrInvalidParams, powerFactor)
	}
	return nil
}

// Compute returns the drop per panel and phase, using each panel's longest
// run and the watts on that phase.
func Compute(params models.CalculationParams, panels []models.Panel, lights []models.Light) (map[int]map[models.Phase]float64, error) {
	cable, err := LookupCable(params.CableType)
	if err != nil {
		return nil, err
	}
	if err := validate(params.Voltage, params.PowerFactor); err != nil {
		return nil, err
	}

	results := make(map[int]map[models.Phase]float64, len(panels))
	for _, panel := range panels {
		var watts [4]float64
		for _, l := range lights {
			if l.InPanel(panel.ID) && l.Phase.Valid() {
				watts[l.Phase] += l.PowerW
			}
		}
		perPhase := make(map[models.Phase]float64, len(models.Phases))
		for _, phase := range models.Phases {
			drop, err := Drop(cable, params.Voltage, params.PowerFactor, panel.PhaseInfo[phase].Distance, watts[phase])
			if err != nil {
				return nil, err
			}
			perPhase[phase] = drop
		}
		results[panel.ID] = perPhase
	}
	return results, nil
}
