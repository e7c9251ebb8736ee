// Package config loads the process configuration: network selection, data
// directories and log level.
package config

import (
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/utils/constants"
	"github.com/Chia-Network/chia-blockchain-sub022/infrastructure/logger"
)

const (
	defaultLogFilename    = "chiaconsensus.log"
	defaultErrLogFilename = "chiaconsensus_err.log"
	defaultDBDirname      = "db"
	defaultLogDirname     = "logs"
	defaultLogLevel       = "info"
)

// DefaultAppDir is the default directory for application data
var DefaultAppDir = defaultAppDir()

func defaultAppDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".chiaconsensus"
	}
	return filepath.Join(homeDir, ".chiaconsensus")
}

// Flags holds the command-line configurable options
type Flags struct {
	AppDir   string `short:"b" long:"appdir" description:"Directory to store data"`
	LogLevel string `short:"d" long:"loglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	Testnet  bool   `long:"testnet" description:"Use the test network"`
}

// Config is the parsed and normalized process configuration
type Config struct {
	*Flags

	// ActiveConstants are the consensus parameters of the selected network
	ActiveConstants *constants.ConsensusConstants
}

// DefaultFlags returns a Flags with all defaults filled in
func DefaultFlags() *Flags {
	return &Flags{
		AppDir:   DefaultAppDir,
		LogLevel: defaultLogLevel,
	}
}

// LoadConfig parses command-line options over the defaults and resolves the
// selected network
func LoadConfig() (*Config, error) {
	cfg := &Config{Flags: DefaultFlags()}
	parser := flags.NewParser(cfg.Flags, flags.HelpFlag)
	_, err := parser.Parse()
	if err != nil {
		return nil, err
	}
	err = cfg.Resolve()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve normalizes paths and picks the network constants. Split out of
// LoadConfig so tests can build configs without a command line.
func (cfg *Config) Resolve() error {
	appDir, err := filepath.Abs(cfg.AppDir)
	if err != nil {
		return errors.Wrapf(err, "resolving app directory %s", cfg.AppDir)
	}
	cfg.AppDir = appDir

	if cfg.Testnet {
		cfg.ActiveConstants = constants.TestnetConstants
	} else {
		cfg.ActiveConstants = constants.MainnetConstants
	}

	if _, ok := logger.LevelFromString(cfg.LogLevel); !ok {
		return errors.Errorf("the log level %s doesn't exist", cfg.LogLevel)
	}
	return nil
}

// DBDir returns the directory the databases live in
func (cfg *Config) DBDir() string {
	return filepath.Join(cfg.AppDir, cfg.networkName(), defaultDBDirname)
}

// LogDir returns the directory log files are written to
func (cfg *Config) LogDir() string {
	return filepath.Join(cfg.AppDir, cfg.networkName(), defaultLogDirname)
}

// LogFile returns the main log file path
func (cfg *Config) LogFile() string {
	return filepath.Join(cfg.LogDir(), defaultLogFilename)
}

// ErrLogFile returns the error log file path
func (cfg *Config) ErrLogFile() string {
	return filepath.Join(cfg.LogDir(), defaultErrLogFilename)
}

func (cfg *Config) networkName() string {
	if cfg.Testnet {
		return "testnet"
	}
	return "mainnet"
}

// InitLog starts the logger with the configured files and level
func (cfg *Config) InitLog() error {
	err := logger.InitLog(cfg.LogFile(), cfg.ErrLogFile())
	if err != nil {
		return err
	}
	return logger.ParseAndSetLogLevels(cfg.LogLevel)
}
