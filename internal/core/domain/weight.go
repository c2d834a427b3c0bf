package domain

// TimeWeight overrides the scheduling weight inside one daily time window.
// Start and End are clock times in "HH:MM" form.
type TimeWeight struct {
	Start  string
	End    string
	Weight int
}

// WeightConfig is the scheduling priority of one (platform, target) pair: a
// default weight plus optional time-windowed overrides. Windows may overlap;
// the scheduler applies the last matching window.
type WeightConfig struct {
	Default     int
	TimeWindows []TimeWeight
}

// TargetWeight is one row of the weight listing: the pair it applies to and
// its current config.
type TargetWeight struct {
	PlatformName string
	Target       string
	TargetName   string
	Weight       WeightConfig
}
