// Package input reads technician and job lists from YAML or JSON files.
package input

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/fieldroute/core/geo"
	"github.com/kilianp07/fieldroute/core/model"
)

// Job is a model.Job that may give its priority as a triage urgency level.
type Job struct {
	model.Job `yaml:",inline"`
	Urgency   string `json:"urgency,omitempty" yaml:"urgency,omitempty"`

	// hasPriority is set when the file gives a priority, including 0.
	hasPriority bool
}

// jobKeys holds the keys that model.Job alone cannot tell apart from their
// zero value.
type jobKeys struct {
	Priority *int   `json:"priority" yaml:"priority"`
	Urgency  string `json:"urgency" yaml:"urgency"`
}

func (j *Job) set(k jobKeys) {
	j.Urgency = k.Urgency
	j.hasPriority = k.Priority != nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (j *Job) UnmarshalYAML(node *yaml.Node) error {
	var k jobKeys
	if err := node.Decode(&j.Job); err != nil {
		return err
	}
	if err := node.Decode(&k); err != nil {
		return err
	}
	j.set(k)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (j *Job) UnmarshalJSON(data []byte) error {
	var k jobKeys
	if err := json.Unmarshal(data, &j.Job); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}
	j.set(k)
	return nil
}

// File is the on-disk planning input.
type File struct {
	Technicians []model.Technician `json:"technicians" yaml:"technicians"`
	Jobs        []Job              `json:"jobs" yaml:"jobs"`
	Depot       *geo.Point         `json:"depot,omitempty" yaml:"depot,omitempty"`
	Profile     string             `json:"profile,omitempty" yaml:"profile,omitempty"`
}

// Load decodes path, choosing the format from its extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := Unmarshal(filepath.Ext(path), data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

// Unmarshal decodes YAML (.yaml, .yml) or JSON (.json) data into out.
func Unmarshal(ext string, data []byte, out any) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	case ".json":
		return json.Unmarshal(data, out)
	default:
		return fmt.Errorf("unsupported input format: %q", ext)
	}
}

// TechnicianList returns the technicians with unset capacity and working hours
// defaulted. Hours are only defaulted when both bounds are zero.
func (f *File) TechnicianList() []model.Technician {
	out := make([]model.Technician, len(f.Technicians))
	for i, t := range f.Technicians {
		if t.MaxCapacity == 0 {
			t.MaxCapacity = model.DefaultMaxCapacity
		}
		if t.AvailableFrom == 0 && t.AvailableTo == 0 {
			t.AvailableFrom = model.DefaultAvailableFrom
			t.AvailableTo = model.DefaultAvailableTo
		}
		out[i] = t
	}
	return out
}

// JobList returns the jobs with priority and duration defaulted. An urgency
// level only applies when the file gives no priority; an explicit 0 is kept.
func (f *File) JobList() []model.Job {
	out := make([]model.Job, len(f.Jobs))
	for i, j := range f.Jobs {
		job := j.Job
		if !j.hasPriority {
			job.Priority = model.PriorityFromUrgency(j.Urgency)
		}
		if job.EstimatedDuration == 0 {
			job.EstimatedDuration = model.DefaultDuration
		}
		out[i] = job
	}
	return out
}
