package config

const (
	defaultConfigPath       = "~/.config/janitor/config.toml"
	projectConfigName       = "janitor.toml"
	defaultRequestTimeout   = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogDir           = "~/.local/share/janitor/logs"
	defaultLogRetentionDays = 30
	defaultScheduleCron     = "0 4 * * *"
)

// Default returns a Config populated with repository defaults. Keep lists,
// thresholds and credentials have no defaults and must come from the config
// file.
func Default() Config {
	return Config{
		Notifications: Notifications{
			RequestTimeout: defaultRequestTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			Dir:           defaultLogDir,
			RetentionDays: defaultLogRetentionDays,
		},
		Schedule: Schedule{
			Cron: defaultScheduleCron,
		},
	}
}
