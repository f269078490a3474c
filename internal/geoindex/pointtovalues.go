package geoindex

import (
	"encoding/binary"
	"math"

	"github.com/iamNilotpal/payloadindex/internal/pointvalues"
	"github.com/iamNilotpal/payloadindex/internal/snapshot"
)

// geoPointBytes is the fixed record width of one snapshot.GeoPoint: two
// little-endian float64s.
const geoPointBytes = 16

var geoPointCodec = pointvalues.Codec[snapshot.GeoPoint]{
	Size: geoPointBytes,
	Encode: func(p snapshot.GeoPoint, buf []byte) {
		binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(p.Lat))
		binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(p.Lon))
	},
	Decode: func(buf []byte) snapshot.GeoPoint {
		return snapshot.GeoPoint{
			Lat: math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8])),
			Lon: math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16])),
		}
	},
}

// pointToValues is the geo index's instantiation of the generic
// PointToValues<T> sub-store at T = snapshot.GeoPoint.
type pointToValues = pointvalues.Store[snapshot.GeoPoint]

func buildPointToValues(valuesPath, offsetsPath string, points [][]snapshot.GeoPoint) error {
	return pointvalues.Build(valuesPath, offsetsPath, points, geoPointCodec)
}

func openPointToValues(valuesPath, offsetsPath string, populate bool) (*pointToValues, error) {
	return pointvalues.Open(valuesPath, offsetsPath, populate, geoPointCodec)
}
