// Package probe provides the termination heuristics used when exploring
// an unbounded remote space: docarc never knows how many datasets or
// pages exist, so both loops stop after a configurable run of
// consecutive failures instead of consulting an authoritative index.
package probe
