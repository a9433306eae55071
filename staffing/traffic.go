package staffing

import "fmt"

// TrafficModel converts a daily call volume and handle time into offered
// traffic in Erlangs for the interval being staffed.
type TrafficModel interface {
	Intensity(calls, aht float64) float64
	Name() string
}

// Model names accepted by ModelByName.
const (
	ModelOperatingHours = "operating_hours"
	ModelPeakHour       = "peak_hour"
)

// OperatingHours spreads the daily volume evenly over the active hours of
// the day. This is the default model.
type OperatingHours struct {
	Hours float64
}

func (m OperatingHours) Intensity(calls, aht float64) float64 {
	if m.Hours <= 0 {
		return 0
	}
	return calls * aht / (m.Hours * 3600)
}

func (m OperatingHours) Name() string { return ModelOperatingHours }

// PeakHour assumes a fixed share of the daily volume lands in the busiest
// hour and staffs for that hour.
type PeakHour struct {
	Ratio float64
}

func (m PeakHour) Intensity(calls, aht float64) float64 {
	peakCalls := calls * m.Ratio
	return peakCalls * aht / 3600
}

func (m PeakHour) Name() string { return ModelPeakHour }

// ModelByName builds a traffic model from its configured name and parameter.
func ModelByName(name string, operatingHours, peakHourRatio float64) (TrafficModel, error) {
	switch name {
	case ModelOperatingHours, "":
		return OperatingHours{Hours: operatingHours}, nil
	case ModelPeakHour:
		return PeakHour{Ratio: peakHourRatio}, nil
	default:
		return nil, fmt.Errorf("unknown traffic model %q", name)
	}
}
