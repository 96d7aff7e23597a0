package server

import (
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/Andreluss/BlackLady-Network-Game/internal/game"
)

// DefaultTimeout is the response deadline applied when none is configured
const DefaultTimeout = 5 * time.Second

// Config is the fully resolved server configuration.
type Config struct {
	// Port to listen on; 0 picks an ephemeral port.
	Port int

	// Timeout bounds how long the server waits for a client response
	// before retransmitting a trick request, and how long a candidate
	// connection may stall before sending IAM.
	Timeout time.Duration

	// Deals is the scripted game, played in order.
	Deals []game.DealConfig

	// Trace receives raw-frame wire trace lines; nil disables tracing.
	Trace io.Writer
}

// Validate reports configuration the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if len(c.Deals) == 0 {
		return fmt.Errorf("at least one deal must be configured")
	}
	return nil
}

// FileConfig is the HCL configuration file schema. Command-line flags
// override whatever the file sets.
type FileConfig struct {
	Server FileServerSettings `hcl:"server,block"`
}

// FileServerSettings contains server-level configuration
type FileServerSettings struct {
	Port           int    `hcl:"port,optional"`
	TimeoutSeconds int    `hcl:"timeout_seconds,optional"`
	DealFile       string `hcl:"deal_file,optional"`
	LogLevel       string `hcl:"log_level,optional"`
	Debug          bool   `hcl:"debug,optional"`
}

// LoadFileConfig loads the optional HCL configuration file.
func LoadFileConfig(filename string) (*FileConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config FileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("timeout_seconds must not be negative")
	}
	return &config, nil
}
