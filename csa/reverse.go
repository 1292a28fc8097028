package csa

import (
	"cmp"
	"context"

	"golang.org/x/exp/slices"

	"github.com/gmatosferreira/gtfsrouter/compile"
)

// Reverse builds a time-reversed view of tt for the given arrival
// time: departure and arrival fields are swapped per Connection, and
// every timestamp t is mapped to arrival-t. Connections with negative
// mapped departure time (i.e. that reach their arrival stop after
// arrival in the original timetable) are dropped. The result is a derived timetable;
// it shares no backing array with tt and never mutates it.
func Reverse(tt *compile.Timetable, arrival int) *compile.Timetable {
	conns := make([]compile.Connection, 0, len(tt.Connections))
	for _, c := range tt.Connections {
		newDeparture := arrival - c.ArrivalTime
		newArrival := arrival - c.DepartureTime
		if newDeparture < 0 {
			continue
		}
		conns = append(conns, compile.Connection{
			DepartureStop: c.ArrivalStop,
			ArrivalStop:   c.DepartureStop,
			DepartureTime: newDeparture,
			ArrivalTime:   newArrival,
			TripIndex:     c.TripIndex,
		})
	}

	slices.SortStableFunc(conns, func(a, b compile.Connection) int {
		return cmp.Compare(a.DepartureTime, b.DepartureTime)
	})

	return &compile.Timetable{Connections: conns}
}

// unreverse maps a Step produced by searching a Reverse()d timetable
// back to real time/stop space. Connection steps invert exactly
// (swap stops, departure/arrival := arrival-arrival/departure-depart).
// Transfer steps keep their stop pair (the transfer table itself was
// never reversed) and have their time recomputed relative to the
// connection step that precedes them in the unreversed chain, since a
// reversed-time tau value doesn't correspond to a single real instant
// on its own.
func unreverse(arrival int, steps []Step) []Step {
	out := make([]Step, len(steps))
	for i, s := range steps {
		j := len(steps) - 1 - i
		switch s.Kind {
		case StepConnection:
			rc := s.Conn
			out[j] = Step{
				Kind: StepConnection,
				Conn: compile.Connection{
					DepartureStop: rc.ArrivalStop,
					ArrivalStop:   rc.DepartureStop,
					DepartureTime: arrival - rc.ArrivalTime,
					ArrivalTime:   arrival - rc.DepartureTime,
					TripIndex:     rc.TripIndex,
				},
				FromStop:    rc.ArrivalStop,
				ToStop:      rc.DepartureStop,
				ArrivalTime: arrival - rc.DepartureTime,
			}
		case StepTransfer:
			out[j] = Step{
				Kind:            StepTransfer,
				FromStop:        s.FromStop,
				ToStop:          s.ToStop,
				MinTransferTime: s.MinTransferTime,
			}
		}
	}

	// Transfer steps' ArrivalTime couldn't be computed from reversed
	// tau values in isolation; fill them in from the preceding
	// connection step's (now-real) arrival time plus the walk time.
	for i, s := range out {
		if s.Kind != StepTransfer {
			continue
		}
		if i > 0 {
			out[i].ArrivalTime = out[i-1].ArrivalTime + s.MinTransferTime
		}
	}

	return out
}

// RefineResult is the outcome of running Refine.
type RefineResult struct {
	Result    *Result
	Refined   bool
	Departure int // the latest feasible departure from a start stop
}

// Refine runs the reverse-scan: given the forward search's winning
// Result (arrival time A, reached via starts S and ends E), it
// searches the reversed timetable from E back to S to find the latest
// feasible departure that still arrives at A. If the reverse scan
// finds no journey, the forward result is kept (Refined=false).
func Refine(
	ctx context.Context,
	tt *compile.Timetable,
	transfers *compile.TransferIndex,
	idmaps *compile.IdMaps,
	starts []int,
	ends []int,
	forward *Result,
	maxTransfers *int,
) (*RefineResult, error) {
	reversed := Reverse(tt, forward.ArrivalTime)

	rev, err := Search(ctx, reversed, transfers, idmaps, ends, starts, 0, maxTransfers)
	if err != nil {
		return nil, err
	}
	if rev == nil {
		return &RefineResult{Result: forward, Refined: false}, nil
	}

	steps := unreverse(forward.ArrivalTime, rev.Steps)

	refined := &Result{
		EndStop:     forward.EndStop,
		ArrivalTime: forward.ArrivalTime,
		Steps:       steps,
	}

	departure := forward.ArrivalTime
	if len(steps) > 0 && steps[0].Kind == StepConnection {
		departure = steps[0].Conn.DepartureTime
	}

	return &RefineResult{Result: refined, Refined: true, Departure: departure}, nil
}
