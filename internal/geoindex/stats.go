package geoindex

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/iamNilotpal/payloadindex/pkg/errors"
	"github.com/iamNilotpal/payloadindex/pkg/filesys"
)

// fieldStats is the small JSON sidecar persisted to
// mmap_field_index_stats.json.
type fieldStats struct {
	PointsValuesCount int `json:"points_values_count"`
	MaxValuesPerPoint int `json:"max_values_per_point"`
}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

func writeStats(path string, stats fieldStats) error {
	data, err := jsonAPI.Marshal(stats)
	if err != nil {
		return errors.NewIndexError(err, errors.ErrorCodeInternal, "failed to marshal geo index stats")
	}
	return filesys.WriteFile(path, 0644, data)
}

func readStats(path string) (fieldStats, error) {
	data, err := filesys.ReadFile(path)
	if err != nil {
		return fieldStats{}, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to read geo index stats").
			WithPath(path)
	}
	var stats fieldStats
	if err := jsonAPI.Unmarshal(data, &stats); err != nil {
		return fieldStats{}, errors.NewIndexCorruptionError(path, 0, 0, err)
	}
	return stats, nil
}
