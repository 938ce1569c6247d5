package models

import (
	"encoding/json"
	"fmt"
	"time"

	"meetly/scheduling"
)

// ParseSchedule decodes the stored weekly schedule JSON.
func (p *AvailabilityPattern) ParseSchedule() (scheduling.WeekSchedule, error) {
	var schedule scheduling.WeekSchedule
	if err := json.Unmarshal(p.WeeklySchedule, &schedule); err != nil {
		return nil, fmt.Errorf("malformed weekly schedule: %v", err)
	}
	return schedule, nil
}

// ExpansionPattern converts the stored row into the expander's input shape.
func (p *AvailabilityPattern) ExpansionPattern() (scheduling.Pattern, error) {
	schedule, err := p.ParseSchedule()
	if err != nil {
		return scheduling.Pattern{}, err
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return scheduling.Pattern{}, fmt.Errorf("unknown pattern timezone %q: %v", p.Timezone, err)
	}
	return scheduling.Pattern{
		ID:              p.ID,
		DurationMinutes: p.DurationMinutes,
		Schedule:        schedule,
		Location:        loc,
		DateStart:       p.DateRangeStart,
		DateEnd:         p.DateRangeEnd,
	}, nil
}
