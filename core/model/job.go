package model

// Default job values applied by NewJob.
const (
	DefaultPriority = 1
	DefaultDuration = 3600
	// DefaultWindowEnd closes a time window that only has a start (23:00).
	DefaultWindowEnd = 23 * 3600
)

// Job is a unit of dispatchable work.
type Job struct {
	ID                string   `json:"id" yaml:"id" validate:"required"`
	Lat               float64  `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lon               float64  `json:"lon" yaml:"lon" validate:"gte=-180,lte=180"`
	ServiceType       string   `json:"service_type" yaml:"service_type"`
	Priority          int      `json:"priority" yaml:"priority"`
	EstimatedDuration int      `json:"estimated_duration" yaml:"estimated_duration" validate:"gte=0"`
	RequiredSkills    []string `json:"required_skills" yaml:"required_skills"`
	// TimeWindowStart and TimeWindowEnd are seconds from midnight. A nil
	// start means the job has no window.
	TimeWindowStart *int   `json:"time_window_start,omitempty" yaml:"time_window_start,omitempty" validate:"omitempty,gte=0,lte=86400"`
	TimeWindowEnd   *int   `json:"time_window_end,omitempty" yaml:"time_window_end,omitempty" validate:"omitempty,gte=0,lte=86400"`
	CustomerName    string `json:"customer_name" yaml:"customer_name"`
	Address         string `json:"address" yaml:"address"`
}

// NewJob returns a job with default priority and a one hour service time.
func NewJob(id string, lat, lon float64, serviceType string) Job {
	return Job{
		ID:                id,
		Lat:               lat,
		Lon:               lon,
		ServiceType:       serviceType,
		Priority:          DefaultPriority,
		EstimatedDuration: DefaultDuration,
	}
}

// WithWindow returns a copy of the job constrained to [start, end]. A negative
// end leaves the window open-ended.
func (j Job) WithWindow(start, end int) Job {
	s := start
	j.TimeWindowStart = &s
	j.TimeWindowEnd = nil
	if end >= 0 {
		e := end
		j.TimeWindowEnd = &e
	}
	return j
}

// Window returns the effective time window of the job. ok is false when the
// job is unconstrained. A window with only a start closes at 23:00, or at
// its start when that is later.
func (j Job) Window() (start, end int, ok bool) {
	if j.TimeWindowStart == nil {
		return 0, 0, false
	}
	start = *j.TimeWindowStart
	end = max(start, DefaultWindowEnd)
	if j.TimeWindowEnd != nil {
		end = *j.TimeWindowEnd
	}
	return start, end, true
}

// WithDefaultSkills fills RequiredSkills from the service type when the job
// does not list any.
func (j Job) WithDefaultSkills() Job {
	if len(j.RequiredSkills) > 0 {
		return j
	}
	if skills, ok := ServiceSkills[j.ServiceType]; ok {
		j.RequiredSkills = append([]string(nil), skills...)
	}
	return j
}
