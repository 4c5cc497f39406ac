package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	ResizeWidth      int           `mapstructure:"resize_width"`
	LineTools        bool          `mapstructure:"line_tools"`
	AutoRenumber     bool          `mapstructure:"auto_renumber"`
	ListMarker       string        `mapstructure:"list_marker"`
	CandidateMarkers []string      `mapstructure:"candidate_markers"`
	Output           string        `mapstructure:"output"`
	LogLevel         string        `mapstructure:"log_level"`
	CacheSize        int           `mapstructure:"cache_size"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	JPEGQuality      int           `mapstructure:"jpeg_quality"`
	ColorTitle       string        `mapstructure:"color_title"`
	ColorCursor      string        `mapstructure:"color_cursor"`
	ColorLens        string        `mapstructure:"color_lens"`
	ColorDim         string        `mapstructure:"color_dim"`
}

// C is the global config instance
var C Config

// Init initializes configuration with viper
func Init() error {
	SetDefaults(viper.GetViper())

	viper.SetConfigName("mdassist")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "mdassist"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("MDASSIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()

	return viper.Unmarshal(&C)
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("resize_width", 0)       // Keep original size
	v.SetDefault("line_tools", false)     // Inline line tools off
	v.SetDefault("auto_renumber", true)   // Fix ordered lists after edits
	v.SetDefault("list_marker", "ordered") // "ordered" or "one"
	v.SetDefault("candidate_markers", []string{"-", "*", "+", "1.", "1)", "- [ ]"})
	v.SetDefault("output", "print")
	v.SetDefault("log_level", "warn")
	v.SetDefault("cache_size", 64)
	v.SetDefault("cache_ttl", 10*time.Minute)
	v.SetDefault("jpeg_quality", 80)
	v.SetDefault("color_title", "36")  // Cyan
	v.SetDefault("color_cursor", "212") // Pink
	v.SetDefault("color_lens", "32")   // Green
	v.SetDefault("color_dim", "90")    // Gray
}

// ConfigFile returns the config file in use, or "" when none was found
func ConfigFile() string {
	return viper.ConfigFileUsed()
}

// GetResizeWidth returns the target width for embedded images
func GetResizeWidth() int {
	return viper.GetInt("resize_width")
}

// GetLineTools returns whether inline line tools are shown
func GetLineTools() bool {
	return viper.GetBool("line_tools")
}

// GetAutoRenumber returns whether ordered lists are renumbered after edits
func GetAutoRenumber() bool {
	return viper.GetBool("auto_renumber")
}

// GetListMarker returns the ordered list numbering style
func GetListMarker() string {
	return viper.GetString("list_marker")
}

// GetCandidateMarkers returns the list markers cycled through by toggles
func GetCandidateMarkers() []string {
	return viper.GetStringSlice("candidate_markers")
}

// GetOutput returns the output mode
func GetOutput() string {
	return viper.GetString("output")
}

// GetLogLevel returns the log level
func GetLogLevel() string {
	return viper.GetString("log_level")
}

// GetCacheSize returns the number of data URIs kept in memory
func GetCacheSize() int {
	return viper.GetInt("cache_size")
}

// GetCacheTTL returns how long a data URI stays cached
func GetCacheTTL() time.Duration {
	return viper.GetDuration("cache_ttl")
}

// GetJPEGQuality returns the quality used when re-encoding JPEG images
func GetJPEGQuality() int {
	return viper.GetInt("jpeg_quality")
}

// GetColorTitle returns the color of the title bar
func GetColorTitle() string {
	return viper.GetString("color_title")
}

// GetColorCursor returns the color of the cursor line
func GetColorCursor() string {
	return viper.GetString("color_cursor")
}

// GetColorLens returns the color of line tools
func GetColorLens() string {
	return viper.GetString("color_lens")
}

// GetColorDim returns the color of secondary text
func GetColorDim() string {
	return viper.GetString("color_dim")
}

// SetOutput sets output mode at runtime
func SetOutput(mode string) {
	viper.Set("output", mode)
	C.Output = mode
}

// SetResizeWidth sets the image width at runtime
func SetResizeWidth(width int) {
	viper.Set("resize_width", width)
	C.ResizeWidth = width
}

// SetLogLevel sets the log level at runtime
func SetLogLevel(level string) {
	viper.Set("log_level", level)
	C.LogLevel = level
}

// SetLineTools toggles the inline line tools at runtime
func SetLineTools(enabled bool) {
	viper.Set("line_tools", enabled)
	C.LineTools = enabled
}

// ============================================================================
// Per-document settings
// ============================================================================

// Settings are the values that can vary per document
type Settings struct {
	ResizeWidth  int
	LineTools    bool
	AutoRenumber bool
	ListMarker   string
}

// Current returns the settings from the global configuration
func Current() Settings {
	return Settings{
		ResizeWidth:  GetResizeWidth(),
		LineTools:    GetLineTools(),
		AutoRenumber: GetAutoRenumber(),
		ListMarker:   GetListMarker(),
	}
}
