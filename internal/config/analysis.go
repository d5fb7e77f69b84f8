package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Duplicate address policies accepted by DuplicateAddressPolicy.
const (
	DuplicateOverride = "override"
	DuplicateWarn     = "warn"
	DuplicateReject   = "reject"
)

// AnalysisConfig holds the optional knobs of an analysis run. Every field is
// optional; the Get* methods supply defaults for fields left unset, so partial
// files are safe.
type AnalysisConfig struct {
	// Capture discovery
	CaptureExtensions []string `json:"capture_extensions,omitempty"`

	// Hour-of-day is derived in this location. IANA name, e.g. "UTC".
	ReferenceTimezone *string `json:"reference_timezone,omitempty"`

	// What to do when two table rows share a hardware address.
	DuplicateAddressPolicy *string `json:"duplicate_address_policy,omitempty"`

	// Rendering
	ChartWidthPx     *int    `json:"chart_width_px,omitempty"`
	ChartHeightPx    *int    `json:"chart_height_px,omitempty"`
	ComparativeTitle *string `json:"comparative_title,omitempty"`
	DailyTitle       *string `json:"daily_title,omitempty"`
	MedianTitle      *string `json:"median_title,omitempty"`

	// Records between progress log lines; 0 disables progress logging.
	ProgressInterval *int `json:"progress_interval,omitempty"`
}

// DefaultAnalysisConfig returns an AnalysisConfig with all fields unset.
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *AnalysisConfig) Validate() error {
	for _, ext := range c.CaptureExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("capture extension %q must start with a dot", ext)
		}
	}

	if c.ReferenceTimezone != nil {
		if _, err := time.LoadLocation(*c.ReferenceTimezone); err != nil {
			return fmt.Errorf("invalid reference_timezone '%s': %w", *c.ReferenceTimezone, err)
		}
	}

	if c.DuplicateAddressPolicy != nil {
		switch *c.DuplicateAddressPolicy {
		case DuplicateOverride, DuplicateWarn, DuplicateReject:
		default:
			return fmt.Errorf("duplicate_address_policy must be one of %q, %q, %q; got %q",
				DuplicateOverride, DuplicateWarn, DuplicateReject, *c.DuplicateAddressPolicy)
		}
	}

	if c.ChartWidthPx != nil && *c.ChartWidthPx <= 0 {
		return fmt.Errorf("chart_width_px must be positive, got %d", *c.ChartWidthPx)
	}
	if c.ChartHeightPx != nil && *c.ChartHeightPx <= 0 {
		return fmt.Errorf("chart_height_px must be positive, got %d", *c.ChartHeightPx)
	}

	if c.ProgressInterval != nil && *c.ProgressInterval < 0 {
		return fmt.Errorf("progress_interval must be non-negative, got %d", *c.ProgressInterval)
	}

	return nil
}

// GetCaptureExtensions returns the lowercased capture extensions or the default.
func (c *AnalysisConfig) GetCaptureExtensions() []string {
	if len(c.CaptureExtensions) == 0 {
		return []string{".pcap"}
	}
	exts := make([]string, len(c.CaptureExtensions))
	for i, ext := range c.CaptureExtensions {
		exts[i] = strings.ToLower(ext)
	}
	return exts
}

// GetReferenceLocation returns the location hours are derived in.
// Falls back to UTC when unset or unloadable.
func (c *AnalysisConfig) GetReferenceLocation() *time.Location {
	if c.ReferenceTimezone == nil || *c.ReferenceTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(*c.ReferenceTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetDuplicateAddressPolicy returns the duplicate_address_policy value or the default.
func (c *AnalysisConfig) GetDuplicateAddressPolicy() string {
	if c.DuplicateAddressPolicy == nil {
		return DuplicateWarn
	}
	return *c.DuplicateAddressPolicy
}

// GetChartWidthPx returns the chart_width_px value or the default.
func (c *AnalysisConfig) GetChartWidthPx() int {
	if c.ChartWidthPx == nil {
		return 1280
	}
	return *c.ChartWidthPx
}

// GetChartHeightPx returns the chart_height_px value or the default.
func (c *AnalysisConfig) GetChartHeightPx() int {
	if c.ChartHeightPx == nil {
		return 720
	}
	return *c.ChartHeightPx
}

// GetComparativeTitle returns the single-capture chart title.
func (c *AnalysisConfig) GetComparativeTitle() string {
	if c.ComparativeTitle == nil {
		return "Device Activity"
	}
	return *c.ComparativeTitle
}

// GetDailyTitle returns the folder comparative chart title.
func (c *AnalysisConfig) GetDailyTitle() string {
	if c.DailyTitle == nil {
		return "Daily Device Activity"
	}
	return *c.DailyTitle
}

// GetMedianTitle returns the folder median chart title.
func (c *AnalysisConfig) GetMedianTitle() string {
	if c.MedianTitle == nil {
		return "Median Daily Device Activity"
	}
	return *c.MedianTitle
}

// GetProgressInterval returns the progress_interval value or the default.
func (c *AnalysisConfig) GetProgressInterval() int {
	if c.ProgressInterval == nil {
		return 100000
	}
	return *c.ProgressInterval
}
