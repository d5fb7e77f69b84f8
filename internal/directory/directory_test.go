package directory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdevolde/trace-analyzer/internal/config"
)

func TestNormalizeAddress(t *testing.T) {
	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"AA:BB:CC:DD:EE:FF", "aa:bb:cc:dd:ee:ff", false},
		{"aa:bb:cc:dd:ee:ff", "aa:bb:cc:dd:ee:ff", false},
		{"AA-BB-CC-DD-EE-01", "aa:bb:cc:dd:ee:01", false},
		{"aabb.ccdd.eeff", "aa:bb:cc:dd:ee:ff", false},
		{"  00:11:22:33:44:55 ", "00:11:22:33:44:55", false},
		{"not-a-mac", "", true},
		{"00:11:22:33:44:55:66:77", "", true},
		{"", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := NormalizeAddress(tc.in)
			if tc.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidAddress), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	dir, err := New([]Entry{{Device: "printer", Address: "0A:1B:2C:3D:4E:5F"}}, config.DuplicateWarn)
	require.NoError(t, err)

	for _, addr := range []string{"0a:1b:2c:3d:4e:5f", "0A:1B:2C:3D:4E:5F", "0a:1B:2c:3D:4e:5F"} {
		device, ok := dir.Lookup(addr)
		assert.True(t, ok, addr)
		assert.Equal(t, "printer", device)
	}

	_, ok := dir.Lookup("ff:ff:ff:ff:ff:ff")
	assert.False(t, ok)
}

func TestNew_SkipsInvalidAddresses(t *testing.T) {
	dir, err := New([]Entry{
		{Device: "good", Address: "00:00:00:00:00:01"},
		{Device: "bad", Address: "zz:zz"},
	}, config.DuplicateWarn)
	require.NoError(t, err)

	assert.Equal(t, 1, dir.Len())
	assert.Equal(t, []string{"good"}, dir.Devices())
}

func TestNew_DuplicatePolicies(t *testing.T) {
	entries := []Entry{
		{Device: "first", Address: "00:00:00:00:00:01"},
		{Device: "second", Address: "00:00:00:00:00:01"},
	}

	for _, policy := range []string{config.DuplicateOverride, config.DuplicateWarn} {
		t.Run(policy, func(t *testing.T) {
			dir, err := New(entries, policy)
			require.NoError(t, err)
			device, ok := dir.Lookup("00:00:00:00:00:01")
			require.True(t, ok)
			assert.Equal(t, "second", device, "last write wins")
		})
	}

	t.Run(config.DuplicateReject, func(t *testing.T) {
		_, err := New(entries, config.DuplicateReject)
		assert.ErrorIs(t, err, ErrDuplicateAddress)
	})

	t.Run("same device twice is not a conflict", func(t *testing.T) {
		_, err := New([]Entry{entries[0], entries[0]}, config.DuplicateReject)
		assert.NoError(t, err)
	})
}

func TestDevices_DistinctSorted(t *testing.T) {
	dir, err := New([]Entry{
		{Device: "tv", Address: "00:00:00:00:00:03"},
		{Device: "laptop", Address: "00:00:00:00:00:01"},
		{Device: "laptop", Address: "00:00:00:00:00:02"},
	}, config.DuplicateWarn)
	require.NoError(t, err)

	assert.Equal(t, []string{"laptop", "tv"}, dir.Devices())
	assert.Equal(t, 3, dir.Len())
}

func TestNilDirectory(t *testing.T) {
	var dir *Directory
	_, ok := dir.Lookup("00:00:00:00:00:01")
	assert.False(t, ok)
	assert.Zero(t, dir.Len())
	assert.Nil(t, dir.Devices())
}
