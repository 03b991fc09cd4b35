package cmd

// LogConfig holds the logging flags shared by all commands.
type LogConfig struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"DOSMOUSE_LOG_LEVEL"`
	File    string `help:"Log file path (defaults to console)" env:"DOSMOUSE_LOG_FILE"`
	Format  string `help:"Log format; auto picks text on a terminal, JSON otherwise" enum:"auto,text,json" default:"auto" env:"DOSMOUSE_LOG_FORMAT"`
	RawFile string `help:"Hex dump of guest memory transfers to this file" env:"DOSMOUSE_LOG_RAW_FILE"`
}

// CLI is the root command line.
type CLI struct {
	ConfigFile string    `name:"config" help:"Path to configuration file (json, yaml or toml)" type:"path" env:"DOSMOUSE_CONFIG"`
	Log        LogConfig `embed:"" prefix:"log."`

	Serve   Serve          `cmd:"" help:"Run the driver and accept host input over TCP"`
	Replay  Replay         `cmd:"" help:"Run a scenario script and print the results"`
	State   StateCommand   `cmd:"" help:"Inspect saved driver state blocks"`
	Config  ConfigCommand  `cmd:"" help:"Configuration helpers"`
	Service ServiceCommand `cmd:"" help:"Manage the systemd service"`
}
