// Package capture decodes captured link-layer traffic and attributes each
// frame to the devices of an address directory.
package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ErrCorruptRecord is returned when a record's timestamp cannot be placed on
// the calendar. It indicates a corrupted capture and aborts the run.
var ErrCorruptRecord = errors.New("corrupt capture record")

// Frame is the part of a decoded record the analysis needs.
type Frame struct {
	Timestamp   time.Time
	Hour        int
	Source      string
	Destination string
}

// DecodeFrame extracts the arrival hour and the hardware addresses of one
// record. ok is false, with a nil error, when the payload is not a decodable
// Ethernet frame; such records are expected noise and are skipped.
// Hours are taken from the whole-second arrival time in loc.
func DecodeFrame(rec Record, linkType layers.LinkType, loc *time.Location) (frame Frame, ok bool, err error) {
	hour, err := HourOf(rec.Timestamp, loc)
	if err != nil {
		return Frame{}, false, err
	}

	if linkType != layers.LinkTypeEthernet {
		return Frame{}, false, nil
	}

	var eth layers.Ethernet
	if err := eth.DecodeFromBytes(rec.Data, gopacket.NilDecodeFeedback); err != nil {
		return Frame{}, false, nil
	}

	return Frame{
		Timestamp:   rec.Timestamp,
		Hour:        hour,
		Source:      eth.SrcMAC.String(),
		Destination: eth.DstMAC.String(),
	}, true, nil
}

// HourOf returns the hour of day of ts, truncated to whole seconds, in loc.
// Instants outside years 1..9999 are rejected with ErrCorruptRecord.
func HourOf(ts time.Time, loc *time.Location) (int, error) {
	if loc == nil {
		loc = time.UTC
	}
	t := time.Unix(ts.Unix(), 0).In(loc)
	if y := t.Year(); y < 1 || y > 9999 {
		return 0, fmt.Errorf("%w: timestamp %d out of range", ErrCorruptRecord, ts.Unix())
	}
	return t.Hour(), nil
}
