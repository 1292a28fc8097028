// Package csa implements the Connection Scan Algorithm: the
// earliest-arrival search over a compiled timetable, plus the
// reverse-scan refinement used to tighten the departure time for a
// given best arrival time.
package csa

import (
	"context"
	"math"

	"github.com/gmatosferreira/gtfsrouter/compile"
)

const inf = math.MaxInt32

// StepKind distinguishes a ride hop from a footpath hop in a
// reconstructed Result.
type StepKind int

const (
	StepConnection StepKind = iota
	StepTransfer
)

// Step is one hop of a reconstructed journey: either riding a
// Connection, or walking a footpath transfer between FromStop and
// ToStop.
type Step struct {
	Kind            StepKind
	Conn            compile.Connection // valid when Kind == StepConnection
	FromStop        int
	ToStop          int
	ArrivalTime     int
	MinTransferTime int // valid when Kind == StepTransfer
}

// Result is the outcome of a successful search.
type Result struct {
	EndStop     int
	ArrivalTime int
	Steps       []Step
}

type backEntry struct {
	set         bool
	isTransfer  bool
	conn        compile.Connection
	fromStop    int
	transferMin int
}

// stopSet builds a membership set from a slice of compact stop
// indices.
func stopSet(stops []int) map[int]bool {
	m := make(map[int]bool, len(stops))
	for _, s := range stops {
		m[s] = true
	}
	return m
}

// connectionCheckInterval controls how often the scan checks
// ctx.Err() against the number of Connections examined so far, to
// keep cancellation overhead negligible on large timetables.
const connectionCheckInterval = 4096

// Search runs the earliest-arrival Connection Scan over tt, starting
// from every stop in starts at startTime, looking to reach any stop
// in ends. maxTransfers, if non-nil, bounds the number of trip
// changes along the returned path. It returns nil, nil if no stop in
// ends is reachable (absence of a route is not an error). ctx is
// checked between batches of Connections; a cancelled context aborts
// the scan and returns ctx.Err().
func Search(
	ctx context.Context,
	tt *compile.Timetable,
	transfers *compile.TransferIndex,
	idmaps *compile.IdMaps,
	starts []int,
	ends []int,
	startTime int,
	maxTransfers *int,
) (*Result, error) {
	numStops := len(idmaps.StopID)
	numTrips := len(idmaps.TripID)

	tau := make([]int, numStops)
	nTransfers := make([]int, numStops)
	back := make([]backEntry, numStops)
	tripReachable := make([]bool, numTrips)
	tripNTransfers := make([]int, numTrips)

	for i := range tau {
		tau[i] = inf
	}

	ends_ := stopSet(ends)

	for _, s := range starts {
		tau[s] = startTime
		nTransfers[s] = 0
	}

	// Footpath transfers are reachable immediately at start_time from
	// every start stop, before any connection is boarded.
	for _, s := range starts {
		relaxTransfers(transfers, s, startTime, tau, nTransfers, back)
	}

	tBest := bestArrival(tau, ends_)

	for i, c := range tt.Connections {
		if i%connectionCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if c.DepartureTime < startTime {
			continue
		}
		if tBest < inf && c.DepartureTime > tBest {
			break
		}

		boardable := tripReachable[c.TripIndex] || tau[c.DepartureStop] <= c.DepartureTime
		if !boardable {
			continue
		}

		var candidateTransfers int
		if tripReachable[c.TripIndex] {
			candidateTransfers = tripNTransfers[c.TripIndex]
		} else {
			delta := 0
			if be := back[c.DepartureStop]; be.set {
				if !be.isTransfer && be.conn.TripIndex == c.TripIndex {
					delta = 0
				} else {
					delta = 1
				}
			}
			candidateTransfers = nTransfers[c.DepartureStop] + delta
		}

		if maxTransfers != nil && candidateTransfers > *maxTransfers {
			continue
		}

		if !tripReachable[c.TripIndex] {
			tripReachable[c.TripIndex] = true
			tripNTransfers[c.TripIndex] = candidateTransfers
		}

		if c.ArrivalTime < tau[c.ArrivalStop] {
			tau[c.ArrivalStop] = c.ArrivalTime
			nTransfers[c.ArrivalStop] = candidateTransfers
			back[c.ArrivalStop] = backEntry{set: true, conn: c}

			relaxTransfers(transfers, c.ArrivalStop, c.ArrivalTime, tau, nTransfers, back)

			if ends_[c.ArrivalStop] && tau[c.ArrivalStop] < tBest {
				tBest = tau[c.ArrivalStop]
			}
		}
	}

	eStar := -1
	for _, e := range ends {
		if eStar == -1 || tau[e] < tau[eStar] {
			eStar = e
		}
	}

	if eStar == -1 || tau[eStar] >= inf {
		return nil, nil
	}

	return &Result{
		EndStop:     eStar,
		ArrivalTime: tau[eStar],
		Steps:       reconstruct(back, tau, eStar),
	}, nil
}

func relaxTransfers(
	transfers *compile.TransferIndex,
	stop int,
	atTime int,
	tau []int,
	nTransfers []int,
	back []backEntry,
) {
	for _, xfer := range transfers.For(stop) {
		candidate := atTime + xfer.MinTransferTime
		if candidate < tau[xfer.ToStop] {
			tau[xfer.ToStop] = candidate
			nTransfers[xfer.ToStop] = nTransfers[stop]
			back[xfer.ToStop] = backEntry{
				set:         true,
				isTransfer:  true,
				fromStop:    stop,
				transferMin: xfer.MinTransferTime,
			}
		}
	}
}

func bestArrival(tau []int, ends map[int]bool) int {
	best := inf
	for e := range ends {
		if e < len(tau) && tau[e] < best {
			best = tau[e]
		}
	}
	return best
}

// reconstruct walks the back-pointer chain from stop back to a start
// stop (the first stop with no back entry), returning the hops in
// forward (start-to-end) order.
func reconstruct(back []backEntry, tau []int, stop int) []Step {
	steps := []Step{}

	cur := stop
	for back[cur].set {
		be := back[cur]
		if be.isTransfer {
			steps = append(steps, Step{
				Kind:            StepTransfer,
				FromStop:        be.fromStop,
				ToStop:          cur,
				ArrivalTime:     tau[cur],
				MinTransferTime: be.transferMin,
			})
			cur = be.fromStop
		} else {
			steps = append(steps, Step{
				Kind:        StepConnection,
				Conn:        be.conn,
				FromStop:    be.conn.DepartureStop,
				ToStop:      be.conn.ArrivalStop,
				ArrivalTime: be.conn.ArrivalTime,
			})
			cur = be.conn.DepartureStop
		}
	}

	// steps were appended end-to-start; reverse to start-to-end.
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}

	return steps
}
