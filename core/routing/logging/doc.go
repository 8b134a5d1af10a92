// Package logging persists routing runs and the schedules they produced so
// that past plans can be queried by technician, job, run or time range.
package logging
