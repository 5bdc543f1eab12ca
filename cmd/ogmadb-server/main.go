// Command ogmadb-server starts the OgmaDB TCP server: it resolves
// configuration, opens (or creates) the on-disk database, and serves the
// line-delimited wire protocol until interrupted.
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kaedr/OgmaDB/internal/config"
	"github.com/kaedr/OgmaDB/internal/coltype"
	"github.com/kaedr/OgmaDB/internal/dberrors"
	"github.com/kaedr/OgmaDB/internal/engine"
	"github.com/kaedr/OgmaDB/internal/server"
)

type flags struct {
	configPath string
	listenAddr string
	dbPath     string
	logLevel   string
	create     bool
}

func main() {
	f := &flags{}
	root := &cobra.Command{
		Use:   "ogmadb-server",
		Short: "Serve an OgmaDB database over TCP",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(f)
		},
	}

	root.Flags().StringVar(&f.configPath, "config", "", "path to a TOML config file")
	root.Flags().StringVar(&f.listenAddr, "listen", "", "override the listen address")
	root.Flags().StringVar(&f.dbPath, "db", "", "override the database path")
	root.Flags().StringVar(&f.logLevel, "log-level", "", "override the log level (debug, info, warn, error)")
	root.Flags().BoolVar(&f.create, "create", false, "create the database if it does not already exist")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(f *flags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.listenAddr != "" {
		cfg.ListenAddr = f.listenAddr
	}
	if f.dbPath != "" {
		cfg.DBPath = f.dbPath
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}

	log, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("ogmadb-server: %w", err)
	}
	defer log.Sync()

	eng, dberr := openOrCreate(cfg.DBPath, f.create)
	if dberr != nil {
		log.Error("failed to open database", zap.String("path", cfg.DBPath), zap.String("reason", dberr.Error()))
		return fmt.Errorf("ogmadb-server: %s", dberr.Error())
	}
	defer eng.Close()

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Error("failed to listen", zap.String("addr", cfg.ListenAddr), zap.Error(err))
		return err
	}
	defer ln.Close()

	log.Info("listening", zap.String("addr", cfg.ListenAddr), zap.String("db", cfg.DBPath))

	srv := server.New(eng, log)
	return srv.Serve(ln)
}

// openOrCreate opens an existing database at path, or, when create is set
// and none exists, provisions a fresh one with an empty schema: OgmaDB has
// no CREATE TABLE surface of its own, so operators grow the schema out of
// band and point ogmadb-server at the resulting file.
func openOrCreate(path string, create bool) (*engine.Engine, *dberrors.Error) {
	eng, err := engine.Open(path)
	if err == nil {
		return eng, nil
	}
	if !create {
		return nil, err
	}
	return engine.Create(path, coltype.DBSchema{})
}

func buildLogger(level string) (*zap.Logger, error) {
	var zlevel zap.AtomicLevel
	switch level {
	case "debug":
		zlevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zlevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zlevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zlevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zlevel
	return cfg.Build()
}
