// =============================================================================
// Takeoff Summary - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and the takeoff profiles.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Directories, logging, output naming
//   2. Profiles (profiles/*.yaml): Keyword, unit and pattern rules, one
//      file per named takeoff (e.g. "ducts", "dampers")
//
// PATH RESOLUTION:
//   Relative directories in the main config are resolved against the
//   directory containing the main config file, never against the process
//   working directory.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrProfileNotFound is returned when a requested profile does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for spreadsheets. Every subfolder is
	// a group; files placed directly in it form a group of their own.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where reports are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ProfilesDir is the directory containing takeoff profiles.
	// Each YAML file in this directory is one named configuration.
	// Default: "./profiles"
	ProfilesDir string `yaml:"profiles_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log encoder: "console" or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the report file name (without extension).
	// Placeholders:
	//   {profile}   - Profile name
	//   {timestamp} - Current timestamp (YYYY-MM-DD-HH-MM-SS)
	//   {date}      - Current date (YYYY-MM-DD)
	//   {uuid}      - A random UUID
	// Default: "summary-{profile}-{timestamp}"
	OutputNameFormat string `yaml:"output_name_format"`

	// WriteSummary writes a run summary log next to the report.
	WriteSummary bool `yaml:"write_summary"`

	// CSVSettings controls how .csv input files are read.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// BaseDir is the directory of the loaded config file.
	BaseDir string `yaml:"-"`
}

// CSVSettings contains settings for reading CSV input files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Common values: "," (comma), ";" (semicolon), "\t" (tab)
	// Default: ";"
	Delimiter string `yaml:"delimiter"`
}

// =============================================================================
// PROFILE CONFIGURATION STRUCTURE
// =============================================================================

// ProfileConfig holds one named takeoff configuration.
type ProfileConfig struct {
	// Name identifies the profile. Defaults to the file name without
	// extension.
	Name string `yaml:"name"`

	// ParserType selects the row parser from the parser registry.
	// Values: "entries", "airducts". Default: "entries"
	ParserType string `yaml:"parser_type"`

	// OutputType selects the report writer from the writer registry.
	// Values: "groups_csv", "entries_csv", "area_csv", "xlsx", "xml".
	// Default: "entries_csv"
	OutputType string `yaml:"output_type"`

	// IncludeKeys maps canonical names to keyword synonyms. The order of
	// the YAML mapping is preserved; the first matching group wins.
	IncludeKeys IncludeGroups `yaml:"include_keys"`

	// ExcludeKeys discards a whole row when any cell matches one of them.
	ExcludeKeys []string `yaml:"exclude_keys"`

	// UnitsKeys are the recognized unit tokens ("шт", "м", "м2"...).
	UnitsKeys []string `yaml:"units_keys"`

	// TextRules are normalization actions applied to each cell text
	// before classification.
	TextRules []TextRule `yaml:"text_rules"`

	// Settings holds the pattern and formatting settings.
	Settings Settings `yaml:"settings"`

	// SourceFile is the path the profile was loaded from.
	SourceFile string `yaml:"-"`
}

// IncludeGroup is one canonical name and its keyword synonyms.
type IncludeGroup struct {
	Name     string
	Keywords []string
}

// IncludeGroups is an ordered list of include groups.
type IncludeGroups []IncludeGroup

// UnmarshalYAML decodes a YAML mapping of name -> [keywords] while keeping
// the document order of the mapping keys.
func (g *IncludeGroups) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: include_keys must be a mapping", node.Line)
	}

	groups := make(IncludeGroups, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		var keywords []string
		switch valueNode.Kind {
		case yaml.SequenceNode:
			if err := valueNode.Decode(&keywords); err != nil {
				return fmt.Errorf("line %d: include_keys[%s]: %w", valueNode.Line, keyNode.Value, err)
			}
		case yaml.ScalarNode:
			keywords = []string{valueNode.Value}
		default:
			return fmt.Errorf("line %d: include_keys[%s] must be a list of keywords", valueNode.Line, keyNode.Value)
		}

		groups = append(groups, IncludeGroup{Name: keyNode.Value, Keywords: keywords})
	}

	*g = groups
	return nil
}

// Settings contains pattern and formatting settings for a profile.
type Settings struct {
	// MatchMode selects keyword matching: "token" (whole-token equality
	// after splitting on spaces and commas) or "substring".
	// Default: "token"
	MatchMode string `yaml:"match_mode"`

	// DimensionsPatterns are regular expressions with two capture groups.
	// Example: (\d+)\s*[хx]\s*(\d+)
	DimensionsPatterns []string `yaml:"dimensions_patterns"`

	// DiameterPatterns are regular expressions with one capture group.
	// Example: ø\s*(\d+)
	DiameterPatterns []string `yaml:"diameter_patterns"`

	// DimensionsFormat renders a dimension pair. Placeholders {0} and {1}.
	// Default: "{0}x{1}"
	DimensionsFormat string `yaml:"dimensions_format"`

	// DiameterFormat renders a diameter. Placeholder {0}.
	// Default: "ø{0}"
	DiameterFormat string `yaml:"diameter_format"`

	// DescriptionOrder lists the pattern families in the order they are
	// tried. Values: "diameter", "dimensions".
	// Default: [diameter, dimensions]
	DescriptionOrder []string `yaml:"description_order"`

	// UndefinedDescription is the sentinel used when no pattern matched.
	// Default: "[undefined]"
	UndefinedDescription string `yaml:"undefined_description"`

	// ReviewDescription prefixes manual-review marker descriptions.
	// Default: "[manual check]"
	ReviewDescription string `yaml:"review_description"`

	// AreaScale converts shape units into length units for area rows
	// (0.001 when sizes are in millimeters and lengths in meters).
	// Default: 0.001
	AreaScale float64 `yaml:"area_scale"`

	// AreaUnit is the unit recorded on area entries.
	// Default: "м²"
	AreaUnit string `yaml:"area_unit"`

	// EmitUnresolved controls whether rows with a quantity but no
	// description are emitted with the undefined sentinel.
	// Default: true
	EmitUnresolved *bool `yaml:"emit_unresolved"`
}

// TextRule is a normalization action applied to cell text.
type TextRule struct {
	// Type is one of:
	//   - "trim"            : Remove leading and trailing whitespace
	//   - "lowercase"       : Convert to lowercase
	//   - "collapse_spaces" : Replace whitespace runs with a single space
	//   - "replace"         : Replace Find with Value
	//   - "regex_replace"   : Replace the Find pattern with Value
	Type string `yaml:"type"`

	// Find is the substring or pattern used by "replace" and "regex_replace".
	Find string `yaml:"find,omitempty"`

	// Value is the replacement string.
	Value string `yaml:"value,omitempty"`
}

// Known parser, writer and description family names.
const (
	ParserEntries  = "entries"
	ParserAirducts = "airducts"

	MatchToken     = "token"
	MatchSubstring = "substring"

	FamilyDiameter   = "diameter"
	FamilyDimensions = "dimensions"
)

// ShouldEmitUnresolved reports the effective EmitUnresolved setting.
func (s Settings) ShouldEmitUnresolved() bool {
	return s.EmitUnresolved == nil || *s.EmitUnresolved
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct with directories resolved.
//   - An error if the file cannot be read or parsed.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	config.BaseDir = filepath.Dir(absPath)

	applyMainConfigDefaults(&config)

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration
// options and resolves relative directories against BaseDir.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.ProfilesDir == "" {
		config.ProfilesDir = "./profiles"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "summary-{profile}-{timestamp}"
	}
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ";"
	}

	config.InputDir = resolve(config.BaseDir, config.InputDir)
	config.OutputDir = resolve(config.BaseDir, config.OutputDir)
	config.ProfilesDir = resolve(config.BaseDir, config.ProfilesDir)
}

func resolve(base, dir string) string {
	if filepath.IsAbs(dir) || base == "" {
		return filepath.Clean(dir)
	}
	return filepath.Join(base, dir)
}

// LoadProfiles loads all takeoff profiles from a directory.
//
// PARAMETERS:
//   - profilesDir: The directory containing profile files.
//
// RETURNS:
//   - A map of profiles keyed by profile name.
//   - An error if the directory cannot be read, any file cannot be parsed,
//     or two files declare the same name.
func LoadProfiles(profilesDir string) (map[string]*ProfileConfig, error) {
	info, err := os.Stat(profilesDir)
	if err != nil {
		return nil, fmt.Errorf("profiles directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("profiles directory %s is not a directory", profilesDir)
	}

	files, err := filepath.Glob(filepath.Join(profilesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(profilesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	files = append(files, ymlFiles...)

	profiles := make(map[string]*ProfileConfig, len(files))
	for _, file := range files {
		profile, err := LoadProfile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}

		if existing, ok := profiles[profile.Name]; ok {
			return nil, fmt.Errorf("profile %q defined twice: %s and %s", profile.Name, existing.SourceFile, file)
		}
		profiles[profile.Name] = profile
	}

	return profiles, nil
}

// LoadProfile loads a single profile file and applies defaults.
func LoadProfile(filePath string) (*ProfileConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	profile, err := ParseProfile(data)
	if err != nil {
		return nil, err
	}

	profile.SourceFile = filePath
	if profile.Name == "" {
		base := filepath.Base(filePath)
		profile.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return profile, nil
}

// ParseProfile decodes a profile from YAML and applies defaults.
func ParseProfile(data []byte) (*ProfileConfig, error) {
	var profile ProfileConfig
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	applyProfileDefaults(&profile)
	return &profile, nil
}

// applyProfileDefaults sets default values for profile configuration.
func applyProfileDefaults(profile *ProfileConfig) {
	if profile.ParserType == "" {
		profile.ParserType = ParserEntries
	}
	if profile.OutputType == "" {
		profile.OutputType = "entries_csv"
	}

	s := &profile.Settings
	if s.MatchMode == "" {
		s.MatchMode = MatchToken
	}
	if s.DimensionsFormat == "" {
		s.DimensionsFormat = "{0}x{1}"
	}
	if s.DiameterFormat == "" {
		s.DiameterFormat = "ø{0}"
	}
	if len(s.DescriptionOrder) == 0 {
		s.DescriptionOrder = []string{FamilyDiameter, FamilyDimensions}
	}
	if s.UndefinedDescription == "" {
		s.UndefinedDescription = "[undefined]"
	}
	if s.ReviewDescription == "" {
		s.ReviewDescription = "[manual check]"
	}
	if s.AreaScale == 0 {
		s.AreaScale = 0.001
	}
	if s.AreaUnit == "" {
		s.AreaUnit = "м²"
	}
}

// ProfileNames returns profile names in sorted order.
func ProfileNames(profiles map[string]*ProfileConfig) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectProfile returns the named profile. With an empty name it returns the
// only profile, if there is exactly one.
func SelectProfile(profiles map[string]*ProfileConfig, name string) (*ProfileConfig, error) {
	if name == "" {
		if len(profiles) == 1 {
			for _, p := range profiles {
				return p, nil
			}
		}
		return nil, fmt.Errorf("%w: choose one of %s", ErrProfileNotFound, strings.Join(ProfileNames(profiles), ", "))
	}

	profile, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	return profile, nil
}
