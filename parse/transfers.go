package parse

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/gmatosferreira/gtfsrouter/model"
	"github.com/gmatosferreira/gtfsrouter/storage"
)

type TransferCSV struct {
	FromStopID      string `csv:"from_stop_id"`
	ToStopID        string `csv:"to_stop_id"`
	TransferType    string `csv:"transfer_type"`
	MinTransferTime string `csv:"min_transfer_time"`
}

// ParseTransfers parses transfers.txt. Unlike the other tables,
// transfers.txt is optional: a feed with no file at all simply
// produces no footpaths.
func ParseTransfers(writer storage.FeedWriter, data io.Reader, stops map[string]bool) error {
	transferCsv := []*TransferCSV{}
	if err := gocsv.Unmarshal(data, &transferCsv); err != nil {
		return fmt.Errorf("unmarshaling transfers: %w", err)
	}

	for _, t := range transferCsv {
		if t.FromStopID == "" || t.ToStopID == "" {
			return fmt.Errorf("transfer missing from_stop_id or to_stop_id")
		}
		if !stops[t.FromStopID] {
			return fmt.Errorf("transfer references unknown from_stop_id '%s'", t.FromStopID)
		}
		if !stops[t.ToStopID] {
			return fmt.Errorf("transfer references unknown to_stop_id '%s'", t.ToStopID)
		}

		transferType := model.TransferTypeRecommended
		if t.TransferType != "" {
			tt, err := strconv.Atoi(t.TransferType)
			if err != nil {
				return fmt.Errorf("invalid transfer_type '%s': %w", t.TransferType, err)
			}
			transferType = model.TransferType(tt)
		}

		minTransferTime := 0
		if t.MinTransferTime != "" {
			mtt, err := strconv.Atoi(t.MinTransferTime)
			if err != nil {
				return fmt.Errorf("invalid min_transfer_time '%s': %w", t.MinTransferTime, err)
			}
			minTransferTime = mtt
		}

		err := writer.WriteTransfer(model.Transfer{
			FromStopID:      t.FromStopID,
			ToStopID:        t.ToStopID,
			Type:            transferType,
			MinTransferTime: minTransferTime,
		})
		if err != nil {
			return fmt.Errorf("writing transfer: %w", err)
		}
	}

	return nil
}
