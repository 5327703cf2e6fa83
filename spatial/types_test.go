// Copyright 2026 The Adonde Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLat float64
		wantLng float64
		wantErr bool
	}{
		{name: "plain pair", input: "-34.9011,-56.1645", wantLat: -34.9011, wantLng: -56.1645},
		{name: "spaces around values", input: " 52.52 , 13.405 ", wantLat: 52.52, wantLng: 13.405},
		{name: "missing longitude", input: "12.5", wantErr: true},
		{name: "too many parts", input: "1,2,3", wantErr: true},
		{name: "not a number", input: "north,west", wantErr: true},
		{name: "latitude out of range", input: "95,0", wantErr: true},
		{name: "longitude out of range", input: "0,181", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePoint(tt.input)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.wantLat, p.Lat, 1e-9)
			assert.InDelta(t, tt.wantLng, p.Lng, 1e-9)
		})
	}
}

func TestPointScan(t *testing.T) {
	var p Point

	require.NoError(t, p.Scan([]byte("POINT (-56.164500 -34.901100)")))
	assert.InDelta(t, -34.9011, p.Lat, 1e-6)
	assert.InDelta(t, -56.1645, p.Lng, 1e-6)

	require.NoError(t, p.Scan(map[string]interface{}{"x": 13.405, "y": 52.52}))
	assert.InDelta(t, 52.52, p.Lat, 1e-6)
	assert.InDelta(t, 13.405, p.Lng, 1e-6)

	require.NoError(t, p.Scan(nil))
	assert.Zero(t, p.Lat)
	assert.Zero(t, p.Lng)

	assert.Error(t, p.Scan(42))
}

func TestHaversineDistance(t *testing.T) {
	// Plaza Independencia to Palacio Salvo is roughly 170 m.
	a := &Point{Lat: -34.9066, Lng: -56.2007}
	b := &Point{Lat: -34.9064, Lng: -56.1989}

	d := a.HaversineDistance(b)
	assert.InDelta(t, 166, d, 30)

	assert.Zero(t, a.HaversineDistance(a))
}
