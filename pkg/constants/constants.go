// Package constants provides shared constants used throughout reach record
// assembly: sentinel values, file naming, group and field names in the
// SWOT observation, SWORD database and FLPE output files, and runtime
// defaults.
package constants

// Sentinel constants
const (
	// NonRunSentinel fills every primary parameter of the run type that was
	// not computed in an invocation
	NonRunSentinel = -9999.0

	// GeoBAMAbarPlaceholder is the constant reported for geoBAM's
	// cross-sectional area baseline until the A0 posterior is reduced
	GeoBAMAbarPlaceholder = 1.0
)

// File naming constants
const (
	// NetCDFExt is the extension shared by every input file
	NetCDFExt = ".nc"

	// ObservationSuffix names per-reach SWOT observation files: {reach_id}_SWOT.nc
	ObservationSuffix = "_SWOT"

	// IntegratorSuffix names consolidated FLPE files: {reach_id}_integrator.nc
	IntegratorSuffix = "_integrator"

	// Per-algorithm output directories and file suffixes in the per-file layout
	GeoBAMDir   = "geobam"
	HiVDIDir    = "hivdi"
	MOMMADir    = "momma"
	SADDir      = "sad"
	SIC4DVarDir = "sic4dvar"
	MetroManDir = "metroman"
)

// Observation file names
const (
	ReachGroup   = "reach"
	ReachIDField = "reach_id"
	WSEField     = "wse"
	WidthField   = "width"
	SlopeField   = "slope2"
	TimeField    = "nt"
)

// Reach database names
const (
	ReachesGroup         = "reaches"
	AreaFitsGroup        = "area_fits"
	DischargeModelsGroup = "discharge_models"
	FitCoeffsField       = "fit_coeffs"
	HBreakField          = "h_break"
	WBreakField          = "w_break"
)

// Shared FLPE field names
const (
	// BiasField is the relative systematic bias of an algorithm's discharge
	BiasField = "sbQ_rel"
)

// Runtime defaults
const (
	// DefaultConcurrency is the number of reaches assembled at once in a batch
	DefaultConcurrency = 8

	// MaxConcurrency caps batch parallelism
	MaxConcurrency = 256
)

// FilePermissions is the permission of log files created by the logger (rw-r--r--)
const FilePermissions = 0644
