package weather

import "strconv"

// ExtractCurrent converts a single sample into current conditions.
// The sample must carry both the temperature/humidity block and a condition
// list, and the condition list must not be empty.
func ExtractCurrent(sample *Sample) (*CurrentConditions, error) {
	if sample == nil || sample.Main == nil || sample.Conditions == nil {
		return nil, ErrIncompleteSample
	}
	if len(sample.Conditions) == 0 {
		return nil, ErrNoDescription
	}

	current := &CurrentConditions{
		Temperature:  NotAvailable,
		Humidity:     NotAvailable,
		Clouds:       NotAvailable,
		WindSpeed:    NotAvailable,
		Description:  NotAvailable,
		ChanceOfRain: NotAvailable,
		Conditions:   make([]ConditionLabel, 0, len(sample.Conditions)),
	}

	if v := sample.Main.Temperature; v != nil {
		current.Temperature = formatFahrenheit(*v)
	}
	if v := sample.Main.Humidity; v != nil {
		current.Humidity = formatRaw(*v) + "%"
	}
	if v := sample.CloudCover; v != nil {
		current.Clouds = formatRaw(*v) + "%"
	}
	if v := sample.WindSpeed; v != nil {
		current.WindSpeed = formatWind(*v)
	}
	if v := sample.PrecipProb; v != nil {
		current.ChanceOfRain = formatChance(*v)
	}
	if desc := sample.Conditions[0].Description; desc != "" {
		current.Description = desc
	}

	for _, c := range sample.Conditions {
		label := ConditionLabel{Description: c.Description, Icon: c.Icon}
		if label.Description == "" {
			label.Description = NotAvailable
		}
		if label.Icon == "" {
			label.Icon = NotAvailable
		}
		current.Conditions = append(current.Conditions, label)
	}

	return current, nil
}

// formatRaw prints a provider value as-is, without forcing decimals.
func formatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
