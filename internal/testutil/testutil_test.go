package testutil

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

func TestEthernetFrame(t *testing.T) {
	data := EthernetFrame(t, "aa:bb:cc:dd:ee:01", "aa:bb:cc:dd:ee:02")

	var eth layers.Ethernet
	if err := eth.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if eth.SrcMAC.String() != "aa:bb:cc:dd:ee:01" || eth.DstMAC.String() != "aa:bb:cc:dd:ee:02" {
		t.Errorf("unexpected addresses %s -> %s", eth.SrcMAC, eth.DstMAC)
	}
}

func TestPcapBytes_RoundTrip(t *testing.T) {
	packets := []Packet{
		Frame(t, At(3, 0), "aa:bb:cc:dd:ee:01", "aa:bb:cc:dd:ee:02"),
		Frame(t, At(4, 30), "aa:bb:cc:dd:ee:02", "aa:bb:cc:dd:ee:01"),
	}

	r, err := pcapgo.NewReader(bytes.NewReader(EthernetPcap(t, packets...)))
	AssertNoError(t, err)
	if r.LinkType() != layers.LinkTypeEthernet {
		t.Errorf("link type = %v, want Ethernet", r.LinkType())
	}

	n := 0
	for {
		_, ci, err := r.ReadPacketData()
		if err == io.EOF {
			break
		}
		AssertNoError(t, err)
		if !ci.Timestamp.Equal(packets[n].Time) {
			t.Errorf("packet %d timestamp = %v, want %v", n, ci.Timestamp, packets[n].Time)
		}
		n++
	}
	if n != len(packets) {
		t.Errorf("read %d packets, want %d", n, len(packets))
	}
}

func TestPcapngBytes_RoundTrip(t *testing.T) {
	data := PcapngBytes(t, []Packet{Frame(t, At(12, 0), "aa:bb:cc:dd:ee:01", "aa:bb:cc:dd:ee:02")})

	r, err := pcapgo.NewNgReader(bytes.NewReader(data), pcapgo.DefaultNgReaderOptions)
	AssertNoError(t, err)
	_, ci, err := r.ReadPacketData()
	AssertNoError(t, err)
	if ci.Timestamp.UTC().Hour() != 12 {
		t.Errorf("hour = %d, want 12", ci.Timestamp.UTC().Hour())
	}
}
