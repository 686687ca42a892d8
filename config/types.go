package config

// Config represents the complete configuration structure
type Config struct {
	Recorder RecorderConfig `mapstructure:"recorder"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Safety   SafetyConfig   `mapstructure:"safety"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// RecorderConfig holds recorder service connection details
type RecorderConfig struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

// FilterConfig contains filter definitions
type FilterConfig struct {
	DefaultExpression string            `mapstructure:"default"`
	Presets           map[string]string `mapstructure:"presets"`
}

// SafetyConfig contains safety-related settings
type SafetyConfig struct {
	DryRun        bool `mapstructure:"dry_run"`
	ConfirmDelete bool `mapstructure:"confirm_delete"`
	ShowDetails   bool `mapstructure:"show_details"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
