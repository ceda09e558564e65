package env

import (
	"github.com/thatsimonsguy/firesim/internal/config"
)

var Cfg *config.Config
