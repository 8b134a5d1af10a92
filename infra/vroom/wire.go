package vroom

import "github.com/kilianp07/fieldroute/core/routing"

// maxPriority is the upper bound VROOM accepts for job priorities.
const maxPriority = 100

type request struct {
	Vehicles []vehicle `json:"vehicles"`
	Jobs     []job     `json:"jobs"`
	Matrices matrices  `json:"matrices"`
}

type matrices struct {
	Car matrix `json:"car"`
}

type matrix struct {
	Durations [][]int `json:"durations"`
}

type vehicle struct {
	ID         int    `json:"id"`
	Profile    string `json:"profile"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Capacity   []int  `json:"capacity"`
	Skills     []int  `json:"skills,omitempty"`
	TimeWindow [2]int `json:"time_window"`
}

type job struct {
	ID            int      `json:"id"`
	LocationIndex int      `json:"location_index"`
	Service       int      `json:"service"`
	Delivery      []int    `json:"delivery"`
	Priority      int      `json:"priority"`
	Skills        []int    `json:"skills,omitempty"`
	TimeWindows   [][2]int `json:"time_windows,omitempty"`
}

type response struct {
	Code    int     `json:"code"`
	Error   string  `json:"error"`
	Summary summary `json:"summary"`
	Routes  []route `json:"routes"`
}

type summary struct {
	Cost       float64 `json:"cost"`
	Unassigned int     `json:"unassigned"`
}

type route struct {
	Vehicle int    `json:"vehicle"`
	Steps   []step `json:"steps"`
}

type step struct {
	Type        string `json:"type"`
	ID          int    `json:"id"`
	Arrival     int    `json:"arrival"`
	WaitingTime int    `json:"waiting_time"`
	Service     int    `json:"service"`
}

// encode uses vehicle and task indices as VROOM ids.
func encode(p *routing.Problem) request {
	req := request{
		Vehicles: make([]vehicle, len(p.Vehicles)),
		Jobs:     make([]job, len(p.Tasks)),
		Matrices: matrices{Car: matrix{Durations: p.Durations}},
	}
	for i, v := range p.Vehicles {
		req.Vehicles[i] = vehicle{
			ID:         i,
			Profile:    "car",
			StartIndex: v.Start,
			EndIndex:   v.End,
			Capacity:   []int{v.Capacity},
			Skills:     v.Skills,
			TimeWindow: [2]int{v.Window.Start, v.Window.End},
		}
	}
	for i, t := range p.Tasks {
		j := job{
			ID:            i,
			LocationIndex: t.Point,
			Service:       t.Service,
			Delivery:      []int{t.Delivery},
			Priority:      clamp(t.Priority, 0, maxPriority),
			Skills:        t.Skills,
		}
		if t.Window != nil {
			j.TimeWindows = [][2]int{{t.Window.Start, t.Window.End}}
		}
		req.Jobs[i] = j
	}
	return req
}

// decode keeps only job steps; service starts after any waiting time.
func decode(p *routing.Problem, r *response) *routing.Solution {
	sol := &routing.Solution{Unassigned: r.Summary.Unassigned, Cost: r.Summary.Cost}
	for _, rt := range r.Routes {
		vr := routing.VehicleRoute{Vehicle: rt.Vehicle}
		for _, st := range rt.Steps {
			if st.Type != "job" {
				continue
			}
			vr.Steps = append(vr.Steps, routing.Step{
				Task:    st.ID,
				Arrival: st.Arrival + st.WaitingTime,
				Service: st.Service,
			})
		}
		sol.Routes = append(sol.Routes, vr)
	}
	return sol
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
