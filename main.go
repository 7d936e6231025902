package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chainview/pkg/app"
	"chainview/pkg/backend"
	"chainview/pkg/config"
	"chainview/pkg/models"
	"chainview/pkg/prefs"
	"chainview/pkg/server"
	"chainview/pkg/tui"
	"chainview/pkg/watcher"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Version should be set during build
var Version = "dev"

const demoLatency = 150 * time.Millisecond

// RPCResult is the outcome of probing one RPC endpoint.
type RPCResult struct {
	URL     string `json:"url"`
	Status  string `json:"status"`
	ChainID int64  `json:"chain_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CheckReport is printed by -t.
type CheckReport struct {
	ConfigPath     string      `json:"config_path"`
	ValidStructure bool        `json:"valid_structure"`
	StructureError string      `json:"structure_error,omitempty"`
	Backend        string      `json:"backend"`
	BackendError   string      `json:"backend_error,omitempty"`
	RPCs           []RPCResult `json:"rpcs"`
	Inconsistent   bool        `json:"inconsistent"`
}

func main() {
	os.Exit(run())
}

// run returns the process exit code.
func run() int {
	testFlag := flag.Bool("t", false, "Test configuration and exit")
	jsonFlag := flag.Bool("json", false, "Output test results as JSON")
	configFlag := flag.String("config", "", "Path to configuration file")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	serverFlag := flag.Bool("server", false, "Run in headless server mode")
	portFlag := flag.Int("port", 0, "Port for API server (0 disables it outside server mode)")
	demoFlag := flag.Bool("demo", false, "Use built-in demo data instead of a backend")
	initFlag := flag.Bool("init", false, "Write a default configuration file and exit")
	restoreFlag := flag.Bool("restore", false, "Restore the newest configuration backup and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("chainview version %s\n", Version)
		return 0
	}

	cfgInput := *configFlag
	if cfgInput == "" && len(flag.Args()) > 0 {
		cfgInput = flag.Args()[0]
	}
	path, err := config.GetConfigPath(cfgInput)
	if err != nil {
		fmt.Printf("Error determining config path: %v\n", err)
		return 1
	}

	if *restoreFlag {
		if err := config.RestoreLastBackup(path); err != nil {
			fmt.Printf("Error restoring backup of %s: %v\n", path, err)
			return 1
		}
		fmt.Printf("Restored %s from its last backup\n", path)
		return 0
	}

	cfg, err := config.LoadConfigFromFile(path)
	if err != nil {
		fmt.Printf("Error loading config from %s: %v\n", path, err)
		return 1
	}
	if *demoFlag {
		cfg.Demo = true
	}

	if *initFlag {
		if err := config.SaveConfig(cfg, path); err != nil {
			fmt.Printf("Error writing %s: %v\n", path, err)
			return 1
		}
		fmt.Printf("Wrote %s\n", path)
		return 0
	}

	if *testFlag {
		report := checkConfig(context.Background(), cfg, path)
		printReport(os.Stdout, report, *jsonFlag)
		if !report.ValidStructure || report.BackendError != "" || report.Inconsistent {
			return 1
		}
		return 0
	}

	logger, closeLog, err := newLogger(cfg, *serverFlag)
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		return 1
	}
	defer closeLog()

	store := prefs.Open(cfg.PrefsPath)
	pageSize := cfg.PageSize
	if n := store.PageSize(); n > 0 {
		pageSize = n
	}

	src, err := sources(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	w := watcher.NewWatcher(cfg.RPCURLs, cfg.HeadPollInterval(), logger.WithPrefix("watcher"))
	a := app.New(src, app.Options{
		PageSize:    pageSize,
		Grace:       cfg.ProcessingGrace(),
		SettleDelay: cfg.FocusSettle(),
		Status:      w,
		Prefs:       store,
		Logger:      logger.WithPrefix("app"),
	})
	defer a.Close()
	unwatch := w.WatchStores(a.Stores)
	defer unwatch()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w.Start(ctx)
	defer w.Stop()

	port := *portFlag
	if *serverFlag && port == 0 {
		port = 8080
	}
	if port > 0 {
		srv := server.NewServer(w, logger.WithPrefix("server"))
		for name, s := range a.Summarizers() {
			srv.Register(name, s)
		}
		addr := fmt.Sprintf(":%d", port)
		if *serverFlag {
			logger.Info("running in server mode", "addr", addr)
			if err := srv.Start(ctx, addr); err != nil {
				logger.Error("server stopped", "err", err)
				return 1
			}
			return 0
		}
		go func() {
			if err := srv.Start(ctx, addr); err != nil {
				logger.Error("server stopped", "err", err)
			}
		}()
	}

	err = tui.Start(tui.Options{
		App:     a,
		Watcher: w,
		Prefs:   store,
		RPCURLs: cfg.RPCURLs,
		Logger:  logger.WithPrefix("tui"),
	}, Version)
	if ferr := store.Flush(); ferr != nil {
		logger.Warn("saving preferences", "err", ferr)
	}
	if err != nil {
		fmt.Println(err)
		return 1
	}
	return 0
}

func sources(cfg config.Config) (app.Sources, error) {
	if cfg.Demo {
		return app.DemoSources(backend.NewDemo(demoLatency)), nil
	}
	c, err := backend.NewClient(cfg.BackendURL)
	if err != nil {
		return app.Sources{}, fmt.Errorf("backend: %w", err)
	}
	return app.RemoteSources(c)
}

// newLogger writes to cfg.LogFile when set. The TUI owns the terminal, so
// without a file it only logs in server mode.
func newLogger(cfg config.Config, serverMode bool) (*log.Logger, func(), error) {
	var (
		out     io.Writer = io.Discard
		closeFn           = func() {}
	)
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closeFn = func() { _ = f.Close() }
	case serverMode:
		out = os.Stderr
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "chainview",
	})
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	return logger, closeFn, nil
}

func checkConfig(ctx context.Context, cfg config.Config, path string) CheckReport {
	report := CheckReport{ConfigPath: path, ValidStructure: true, Backend: cfg.BackendURL}
	if err := cfg.Validate(); err != nil {
		report.ValidStructure = false
		report.StructureError = err.Error()
		return report
	}

	if cfg.Demo {
		report.Backend = "demo"
	} else if c, err := backend.NewClient(cfg.BackendURL); err != nil {
		report.BackendError = err.Error()
	} else {
		var page struct {
			TotalItems int `json:"totalItems"`
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := c.Fetch(pingCtx, backend.ResNames, models.Query{Limit: 1}, &page)
		cancel()
		if err != nil {
			report.BackendError = err.Error()
		}
	}

	var observed int64
	for _, url := range cfg.RPCURLs {
		report.RPCs = append(report.RPCs, probeRPC(ctx, url))
		r := report.RPCs[len(report.RPCs)-1]
		if r.Status != "ok" {
			continue
		}
		if observed == 0 {
			observed = r.ChainID
		} else if observed != r.ChainID {
			report.Inconsistent = true
		}
	}
	return report
}

func probeRPC(parent context.Context, url string) RPCResult {
	res := RPCResult{URL: url}
	ctx, cancel := context.WithTimeout(parent, 5*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		res.Status = "error"
		res.Error = err.Error()
		return res
	}
	defer client.Close()

	id, err := client.ChainID(ctx)
	if err != nil {
		res.Status = "error"
		res.Error = fmt.Sprintf("Failed to get ChainID: %v", err)
		return res
	}
	res.Status = "ok"
	res.ChainID = id.Int64()
	return res
}

func printReport(w io.Writer, r CheckReport, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(r)
		return
	}
	fmt.Fprintf(w, "Testing configuration at: %s\n", r.ConfigPath)
	if !r.ValidStructure {
		fmt.Fprintf(w, "Error: %s\n", r.StructureError)
		return
	}
	if r.BackendError != "" {
		fmt.Fprintf(w, "Backend %s: Failed: %s\n", r.Backend, r.BackendError)
	} else {
		fmt.Fprintf(w, "Backend %s: OK\n", r.Backend)
	}
	for _, rpc := range r.RPCs {
		if rpc.Status == "ok" {
			fmt.Fprintf(w, "  RPC: %s ... OK (ChainID: %d)\n", rpc.URL, rpc.ChainID)
		} else {
			fmt.Fprintf(w, "  RPC: %s ... Failed: %s\n", rpc.URL, rpc.Error)
		}
	}
	if r.Inconsistent {
		fmt.Fprintln(w, "\nWARNING: Inconsistent RPCs detected!")
	}
}
