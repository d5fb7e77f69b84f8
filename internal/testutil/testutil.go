// Package testutil provides shared test fixtures: synthetic Ethernet frames
// and in-memory pcap/pcapng captures.
package testutil

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Packet is one record to place in a synthetic capture.
type Packet struct {
	Time time.Time
	Data []byte
}

// At returns 2024-05-01 at the given UTC hour plus a minute offset, a
// convenient way to place packets in a specific hour bucket.
func At(hour, minute int) time.Time {
	return time.Date(2024, time.May, 1, hour, minute, 0, 0, time.UTC)
}

// EthernetFrame serializes an Ethernet II frame carrying a small payload.
func EthernetFrame(t testing.TB, src, dst string) []byte {
	t.Helper()

	srcMAC, err := net.ParseMAC(src)
	if err != nil {
		t.Fatalf("bad source MAC %q: %v", src, err)
	}
	dstMAC, err := net.ParseMAC(dst)
	if err != nil {
		t.Fatalf("bad destination MAC %q: %v", dst, err)
	}

	buf := gopacket.NewSerializeBuffer()
	eth := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       dstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	payload := gopacket.Payload([]byte("trace-analyzer test payload"))
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, eth, payload); err != nil {
		t.Fatalf("serialize frame: %v", err)
	}
	return buf.Bytes()
}

// Frame is shorthand for a Packet carrying an Ethernet frame.
func Frame(t testing.TB, ts time.Time, src, dst string) Packet {
	t.Helper()
	return Packet{Time: ts, Data: EthernetFrame(t, src, dst)}
}

// PcapBytes encodes packets as a classic pcap file with the given link type.
func PcapBytes(t testing.TB, linkType layers.LinkType, packets []Packet) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := pcapgo.NewWriter(&buf)
	if err := w.WriteFileHeader(65535, linkType); err != nil {
		t.Fatalf("write pcap header: %v", err)
	}
	for _, p := range packets {
		ci := gopacket.CaptureInfo{
			Timestamp:     p.Time,
			CaptureLength: len(p.Data),
			Length:        len(p.Data),
		}
		if err := w.WritePacket(ci, p.Data); err != nil {
			t.Fatalf("write pcap packet: %v", err)
		}
	}
	return buf.Bytes()
}

// PcapngBytes encodes packets as a pcapng file with one Ethernet interface.
func PcapngBytes(t testing.TB, packets []Packet) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := pcapgo.NewNgWriter(&buf, layers.LinkTypeEthernet)
	if err != nil {
		t.Fatalf("create pcapng writer: %v", err)
	}
	for _, p := range packets {
		ci := gopacket.CaptureInfo{
			Timestamp:      p.Time,
			CaptureLength:  len(p.Data),
			Length:         len(p.Data),
			InterfaceIndex: 0,
		}
		if err := w.WritePacket(ci, p.Data); err != nil {
			t.Fatalf("write pcapng packet: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush pcapng: %v", err)
	}
	return buf.Bytes()
}

// EthernetPcap is PcapBytes with an Ethernet link type.
func EthernetPcap(t testing.TB, packets ...Packet) []byte {
	t.Helper()
	return PcapBytes(t, layers.LinkTypeEthernet, packets)
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
