// Package export renders schedules for spreadsheets and downstream tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/fieldroute/core/model"
)

var csvHeader = []string{
	"technician_id", "job_id", "arrival", "departure",
	"travel_minutes", "distance_km", "address",
}

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, s model.Schedule) error {
	enc := json.NewEncoder(w)
	return enc.Encode(s)
}

// WriteCSV writes one row per stop, technicians in sorted order and stops in
// route order.
func WriteCSV(w io.Writer, s model.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, tech := range s.TechnicianIDs() {
		for _, st := range s[tech] {
			rec := []string{
				tech,
				st.JobID,
				st.ArrivalTime,
				st.DepartureTime,
				strconv.Itoa(st.TravelMinutes),
				strconv.FormatFloat(st.DistanceKm, 'f', 2, 64),
				st.Address,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
