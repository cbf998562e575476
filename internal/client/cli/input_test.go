package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Title?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Title?\n> ", out.String())
}

func TestGetSimpleText_EOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Title?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Title?", &out)
	require.Error(t, err)
}

func TestGetMultiline(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb\n\n\n"), "Description", &out)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)

	got, err = GetMultiline(rdr("only\r\n"), "Description", &out)
	require.NoError(t, err)
	assert.Equal(t, "only", got)

	got, err = GetMultiline(rdr("tail"), "Description", &out)
	require.NoError(t, err)
	assert.Equal(t, "tail", got)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("pw"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, []byte("pw"), pw)

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(&out)
	require.Error(t, err)
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{name: "ok", args: []string{"52.52", "13.405"}, lat: 52.52, lon: 13.405},
		{name: "extra args ignored", args: []string{"-33.9", "151.2", "Sydney"}, lat: -33.9, lon: 151.2},
		{name: "missing", args: []string{"1"}, wantErr: true},
		{name: "not a number", args: []string{"north", "1"}, wantErr: true},
		{name: "out of range", args: []string{"91", "0"}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lat, lon, err := ParseCoordinates(tc.args)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.lat, lat)
			assert.Equal(t, tc.lon, lon)
		})
	}
}
