package payloadoptions

const (
	// DefaultDataDir is the base directory holding the per-field index
	// directories when no directory is explicitly configured.
	DefaultDataDir = "/var/lib/payloadindex"

	// DefaultOnDisk matches the upstream default: indexes are opened with
	// demand-paged mmap regions rather than eagerly populated ones.
	DefaultOnDisk = true

	// DefaultMaxGeohashPrecision is the default MaxGeohashPrecision setting
	// (not read by the geo index build).
	DefaultMaxGeohashPrecision uint = 12

	// MaxGeohashPrecisionLimit bounds WithMaxGeohashPrecision and is also
	// the fixed on-disk width, in bytes, of every geohash key the geo index
	// stores.
	MaxGeohashPrecisionLimit uint = 16
)

// defaultOptions holds the baseline configuration applied by
// WithDefaultOptions before any caller-supplied OptionFunc runs.
var defaultOptions = Options{
	DataDir: DefaultDataDir,
	OnDisk:  DefaultOnDisk,
	GeoIndexOptions: &geoIndexOptions{
		MaxGeohashPrecision: DefaultMaxGeohashPrecision,
	},
}

// NewDefaultOptions returns a copy of the baseline configuration.
func NewDefaultOptions() Options {
	opts := defaultOptions
	geo := *defaultOptions.GeoIndexOptions
	opts.GeoIndexOptions = &geo
	return opts
}
