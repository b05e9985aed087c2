package types

// ScanConfig holds settings for image discovery.
type ScanConfig struct {
	// Root is the directory scanned recursively for images.
	Root string `json:"root" yaml:"root"`
}

// ConverterBackend identifies the platform utility used for HEIC/HEIF
// to JPEG conversion.
type ConverterBackend string

const (
	BackendAuto        ConverterBackend = "auto"
	BackendSips        ConverterBackend = "sips"
	BackendMagick      ConverterBackend = "magick"
	BackendHeifConvert ConverterBackend = "heif-convert"
)

// ConversionConfig holds settings for format normalization.
type ConversionConfig struct {
	// Backend selects the conversion utility: auto, sips, magick, or
	// heif-convert. Auto probes in that order and uses the first one
	// found on PATH.
	Backend ConverterBackend `json:"backend" yaml:"backend"`
}

// RecognitionConfig holds settings for the external recognition tool.
type RecognitionConfig struct {
	// Command is the recognition tool binary (default "homr").
	Command string `json:"command" yaml:"command"`

	// Args are extra arguments placed before the image path.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// RenderConfig holds settings for PDF/SVG rasterization.
type RenderConfig struct {
	// Roots are the directories scanned for .pdf and .svg sources.
	Roots []string `json:"roots" yaml:"roots"`

	// DPI is the rasterization resolution (default 300).
	DPI int `json:"dpi" yaml:"dpi"`

	// Quality is the JPEG quality for rendered PDF pages, 1-100
	// (default 92).
	Quality int `json:"quality" yaml:"quality"`
}

// PreviewConfig holds settings for the score preview server.
type PreviewConfig struct {
	// Port is the HTTP listen port; 0 picks a free port.
	Port int `json:"port" yaml:"port"`

	// Offline serves a locally cached OSMD bundle instead of the CDN.
	Offline bool `json:"offline" yaml:"offline"`

	// CacheDir is where the OSMD bundle is cached
	// (default ~/.cache/scorebatch).
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`
}

// LedgerConfig holds settings for the run history database.
type LedgerConfig struct {
	// Path is the SQLite database file. Empty disables the ledger.
	Path string `json:"path" yaml:"path"`
}

// ConversionStatus describes the outcome of normalizing one file.
type ConversionStatus string

const (
	// ConversionDone means a HEIC/HEIF source was converted to JPEG.
	ConversionDone ConversionStatus = "converted"
	// ConversionNone means the file needed no conversion.
	ConversionNone ConversionStatus = "none"
	// ConversionFailed means the converter failed or was unavailable.
	ConversionFailed ConversionStatus = "failed"
)

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Scan        ScanConfig        `json:"scan" yaml:"scan"`
	Conversion  ConversionConfig  `json:"conversion" yaml:"conversion"`
	Recognition RecognitionConfig `json:"recognition" yaml:"recognition"`
	Render      RenderConfig      `json:"render" yaml:"render"`
	Preview     PreviewConfig     `json:"preview" yaml:"preview"`
	Ledger      LedgerConfig      `json:"ledger" yaml:"ledger"`
}
