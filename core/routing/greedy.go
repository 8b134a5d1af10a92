package routing

// GreedyPlanner is the deterministic fallback used when the solver fails. It
// repeatedly picks the (job, technician) pair with the lowest travel time
// divided by the job priority and appends the job to that technician's
// route. Ties keep the earliest job, then the earliest technician, in input
// order. Time windows are not considered.
type GreedyPlanner struct{}

// Name identifies the planner in events and metrics.
func (GreedyPlanner) Name() string { return "greedy" }

// Plan always terminates and never fails; jobs that no technician can take
// are counted as unassigned.
func (GreedyPlanner) Plan(p *Problem) *Solution {
	nV := len(p.Vehicles)
	pos := make([]int, nV)
	clock := make([]int, nV)
	load := make([]int, nV)
	for v, veh := range p.Vehicles {
		pos[v] = veh.Start
		clock[v] = veh.Window.Start
	}
	routes := make([]VehicleRoute, nV)
	for v := range routes {
		routes[v].Vehicle = v
	}
	done := make([]bool, len(p.Tasks))

	sol := &Solution{}
	for assigned := 0; assigned < len(p.Tasks); assigned++ {
		bestT, bestV := -1, -1
		var bestCost float64
		for t, task := range p.Tasks {
			if done[t] {
				continue
			}
			for v := range p.Vehicles {
				if load[v] >= p.Vehicles[v].Capacity || !p.CanServe(v, t) {
					continue
				}
				cost := float64(p.Travel(pos[v], task.Point)) / float64(max(task.Priority, 1))
				if bestT < 0 || cost < bestCost {
					bestT, bestV, bestCost = t, v, cost
				}
			}
		}
		if bestT < 0 {
			break
		}
		task := p.Tasks[bestT]
		travel := p.Travel(pos[bestV], task.Point)
		step := Step{Task: bestT, Arrival: clock[bestV] + travel, Service: task.Service}
		routes[bestV].Steps = append(routes[bestV].Steps, step)
		clock[bestV] = step.Departure()
		pos[bestV] = task.Point
		load[bestV]++
		done[bestT] = true
		sol.Cost += float64(travel)
	}

	for _, r := range routes {
		if len(r.Steps) > 0 {
			sol.Routes = append(sol.Routes, r)
		}
	}
	for _, d := range done {
		if !d {
			sol.Unassigned++
		}
	}
	return sol
}
