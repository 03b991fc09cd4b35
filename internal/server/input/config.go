package input

import "time"

// ServerConfig represents the input listener configuration.
type ServerConfig struct {
	Addr        string        `help:"Host input listen address" default:"127.0.0.1:3340" env:"DOSMOUSE_INPUT_ADDR"`
	IdleTimeout time.Duration `help:"Drop input clients silent for this long; 0 to disable" default:"0s" env:"DOSMOUSE_INPUT_IDLE_TIMEOUT"`
}
