package weather

// dayAccumulator collects the raw values of one calendar date.
type dayAccumulator struct {
	date       string
	temps      []float64
	humidities []float64
	windSpeeds []float64
	clouds     []float64
	pops       []float64
	descOrder  []string // first-seen order of descriptions
	descCounts map[string]int
}

func newDayAccumulator(date string) *dayAccumulator {
	return &dayAccumulator{
		date:       date,
		descCounts: make(map[string]int),
	}
}

func (a *dayAccumulator) add(s *Sample) {
	if v := s.Temperature(); v != nil {
		a.temps = append(a.temps, *v)
	}
	if v := s.Humidity(); v != nil {
		a.humidities = append(a.humidities, *v)
	}
	if s.WindSpeed != nil {
		a.windSpeeds = append(a.windSpeeds, *s.WindSpeed)
	}
	if s.CloudCover != nil {
		a.clouds = append(a.clouds, *s.CloudCover)
	}
	if s.PrecipProb != nil {
		a.pops = append(a.pops, *s.PrecipProb)
	}
	if desc := s.PrimaryDescription(); desc != "" {
		if _, seen := a.descCounts[desc]; !seen {
			a.descOrder = append(a.descOrder, desc)
		}
		a.descCounts[desc]++
	}
}

// DailyForecast groups samples by calendar date and reduces each date to a
// DailySummary. Dates keep the order in which they first appear in samples
// and at most MaxForecastDays summaries are returned. Samples without a
// timestamp are skipped.
func DailyForecast(samples []Sample) ([]DailySummary, error) {
	if len(samples) == 0 {
		return nil, ErrNoForecastData
	}

	var days []*dayAccumulator
	byDate := make(map[string]*dayAccumulator)

	for i := range samples {
		s := &samples[i]
		date := s.Date()
		if date == "" {
			continue
		}

		acc, ok := byDate[date]
		if !ok {
			acc = newDayAccumulator(date)
			byDate[date] = acc
			days = append(days, acc)
		}
		acc.add(s)
	}

	if len(days) > MaxForecastDays {
		days = days[:MaxForecastDays]
	}

	summaries := make([]DailySummary, 0, len(days))
	for _, acc := range days {
		summaries = append(summaries, acc.summary())
	}
	return summaries, nil
}

func (a *dayAccumulator) summary() DailySummary {
	s := DailySummary{
		Date:         a.date,
		AvgTemp:      NotAvailable,
		MinTemp:      NotAvailable,
		MaxTemp:      NotAvailable,
		AvgHumidity:  NotAvailable,
		Description:  a.dominantDescription(),
		ChanceOfRain: NotAvailable,
		AvgWindSpeed: NotAvailable,
		AvgClouds:    NotAvailable,
	}

	if len(a.temps) > 0 {
		s.AvgTemp = formatFahrenheit(mean(a.temps))
		s.MinTemp = formatFahrenheit(minOf(a.temps))
		s.MaxTemp = formatFahrenheit(maxOf(a.temps))
	}
	if len(a.humidities) > 0 {
		s.AvgHumidity = formatPercent(mean(a.humidities))
	}
	if len(a.windSpeeds) > 0 {
		s.AvgWindSpeed = formatWind(mean(a.windSpeeds))
	}
	if len(a.clouds) > 0 {
		s.AvgClouds = formatPercent(mean(a.clouds))
	}
	if len(a.pops) > 0 {
		s.ChanceOfRain = formatChance(maxOf(a.pops))
	}

	return s
}

// dominantDescription returns the most frequent description. On a tie the
// description seen first wins.
func (a *dayAccumulator) dominantDescription() string {
	best, bestCount := "", 0
	for _, desc := range a.descOrder {
		if n := a.descCounts[desc]; n > bestCount {
			best, bestCount = desc, n
		}
	}
	if best == "" {
		return NotAvailable
	}
	return best
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
