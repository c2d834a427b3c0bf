package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/arklim/subhub-console/internal/core/domain"
)

const (
	minWeight = 1
	maxWeight = 1000
)

// WeightDraft is an operator-edited weight schedule before normalization.
// Window times are clock times in "HH:MM" form.
type WeightDraft struct {
	Default     int
	TimeWindows []TimeWindowDraft
}

// TimeWindowDraft is one unvalidated time-windowed override.
type TimeWindowDraft struct {
	Start  string
	End    string
	Weight int
}

// ValidateWeightDraft checks numeric ranges and per-window chronology and
// returns the normalized config with windows sorted by start time.
// Overlapping windows are accepted: the scheduler applies the last matching
// window, so overlap is a usable way to express exceptions.
func ValidateWeightDraft(draft WeightDraft) (domain.WeightConfig, error) {
	var ferrs FieldErrors

	if draft.Default < minWeight || draft.Default > maxWeight {
		ferrs.add("default", FieldInvalid,
			fmt.Sprintf("default weight must be within [%d, %d]", minWeight, maxWeight))
	}

	windows := make([]domain.TimeWeight, 0, len(draft.TimeWindows))
	for i, w := range draft.TimeWindows {
		field := fmt.Sprintf("time_windows[%d]", i)

		start, err := parseClock(w.Start)
		if err != nil {
			ferrs.add(field, FieldInvalid, fmt.Sprintf("start time %q: %v", w.Start, err))
			continue
		}
		end, err := parseClock(w.End)
		if err != nil {
			ferrs.add(field, FieldInvalid, fmt.Sprintf("end time %q: %v", w.End, err))
			continue
		}
		if !start.Before(end) {
			ferrs.add(field, FieldInvalid, "window start must be before end")
			continue
		}
		if w.Weight < minWeight || w.Weight > maxWeight {
			ferrs.add(field, FieldInvalid,
				fmt.Sprintf("weight must be within [%d, %d]", minWeight, maxWeight))
			continue
		}
		windows = append(windows, domain.TimeWeight{
			Start:  start.Format("15:04"),
			End:    end.Format("15:04"),
			Weight: w.Weight,
		})
	}

	if err := ferrs.orNil(); err != nil {
		return domain.WeightConfig{}, err
	}

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Start < windows[j].Start
	})

	return domain.WeightConfig{Default: draft.Default, TimeWindows: windows}, nil
}

func parseClock(s string) (time.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("want HH:MM")
	}
	return t, nil
}
