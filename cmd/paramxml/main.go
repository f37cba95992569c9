// Command paramxml converts bullet-list text documents into XML parameter
// documents and keeps a catalogue of the parameters it has seen.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/cognicore/paramxml/internal/logging"
	"github.com/cognicore/paramxml/pkg/paramxml/config"
)

var version = "dev"

// Globals are the flags shared by every subcommand
type Globals struct {
	Config    string `name:"config" short:"c" type:"path" help:"YAML configuration file"`
	Verbose   bool   `name:"verbose" short:"v" help:"Log every step"`
	LogFormat string `name:"log-format" help:"Log format (text, json)"`
	DBURL     string `name:"db-url" help:"PostgreSQL connection URL (selects the postgres driver)"`
	DBDriver  string `name:"db-driver" help:"Database driver (sqlite, postgres, memory)"`
	DBPath    string `name:"db-path" type:"path" help:"SQLite database file"`
	NoDB      bool   `name:"no-db" help:"Do not use a database"`
}

// CLI defines the command-line interface using Kong
var CLI struct {
	Globals

	Convert   ConvertCmd   `cmd:"" help:"Convert every .txt file of a directory"`
	Params    ParamsCmd    `cmd:"" help:"List stored parameters"`
	Docs      DocsCmd      `cmd:"" help:"Inspect stored documents"`
	Normalize NormalizeCmd `cmd:"" help:"Print the tag name for each label"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// load resolves the configuration from file, environment and flags, in
// that order, and builds the logger.
func (g *Globals) load() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return config.Config{}, nil, err
	}

	if g.Verbose {
		cfg.Log.Level = "debug"
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}
	if g.DBDriver != "" {
		cfg.Database.Driver = g.DBDriver
	}
	if g.DBURL != "" {
		cfg.Database.URL = g.DBURL
		cfg.Database.Driver = config.DriverPostgres
	}
	if g.DBPath != "" {
		cfg.Database.Path = g.DBPath
	}
	if g.NoDB {
		cfg.Database.Enabled = false
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// VersionCmd prints the build version
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	fmt.Println("paramxml", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("paramxml"),
		kong.Description("Convert bullet-list text documents to XML parameter documents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&CLI.Globals)
	ctx.FatalIfErrorf(err)
}
