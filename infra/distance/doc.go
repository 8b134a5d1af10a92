// Package distance provides road travel-time matrices for the routing
// engine: an OSRM table client and a Redis backed cache in front of it.
package distance
