package compile

import (
	"cmp"

	"golang.org/x/exp/slices"

	"github.com/gmatosferreira/gtfsrouter/feed"
	"github.com/gmatosferreira/gtfsrouter/model"
)

// CompiledTransfer is a footpath transfer with compact integer stop
// ids.
type CompiledTransfer struct {
	ToStop          int
	MinTransferTime int
}

// TransferIndex exposes, for a compact stop index, an ordered slice
// of the footpath transfers originating there. Lookups are O(1): a
// precomputed offsets table indexes into one flat slice.
type TransferIndex struct {
	offsets   []int
	transfers []CompiledTransfer
}

// For returns the transfers originating at stop, sorted by
// MinTransferTime ascending (ties broken by ToStop). The returned
// slice must not be mutated.
func (x *TransferIndex) For(stop int) []CompiledTransfer {
	if stop < 0 || stop+1 >= len(x.offsets) {
		return nil
	}
	return x.transfers[x.offsets[stop]:x.offsets[stop+1]]
}

// compileTransfers restricts f's raw transfers to type-2
// (minimum-time) transfers between stops that survived compilation,
// translates their ids via idmaps, and builds the offset-indexed
// TransferIndex.
func compileTransfers(f *feed.Feed, idmaps *IdMaps) *TransferIndex {
	ns := len(idmaps.StopID)

	byStop := make([][]CompiledTransfer, ns)
	for _, t := range f.Transfers {
		if t.Type != model.TransferTypeMinTime {
			continue
		}
		from, ok := idmaps.StopIndex(t.FromStopID)
		if !ok {
			continue
		}
		to, ok := idmaps.StopIndex(t.ToStopID)
		if !ok {
			continue
		}
		byStop[from] = append(byStop[from], CompiledTransfer{
			ToStop:          to,
			MinTransferTime: t.MinTransferTime,
		})
	}

	offsets := make([]int, ns+1)
	flat := []CompiledTransfer{}
	for s := 0; s < ns; s++ {
		ts := byStop[s]
		slices.SortStableFunc(ts, func(a, b CompiledTransfer) int {
			if c := cmp.Compare(a.MinTransferTime, b.MinTransferTime); c != 0 {
				return c
			}
			return cmp.Compare(a.ToStop, b.ToStop)
		})
		offsets[s] = len(flat)
		flat = append(flat, ts...)
	}
	offsets[ns] = len(flat)

	return &TransferIndex{offsets: offsets, transfers: flat}
}
