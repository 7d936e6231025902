package config

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const ConfigFileName = ".chainview.json"

// Config holds application-wide settings.
type Config struct {
	BackendURL        string   `json:"backend_url"`
	RPCURLs           []string `json:"rpc_urls"`
	PageSize          int      `json:"page_size"`
	ProcessingGraceMS int      `json:"processing_grace_ms"`
	FocusSettleMS     int      `json:"focus_settle_ms"`
	HeadPollSeconds   int      `json:"head_poll_seconds"`
	PrefsPath         string   `json:"prefs_path,omitempty"`
	LogFile           string   `json:"log_file,omitempty"`
	LogLevel          string   `json:"log_level,omitempty"`
	Demo              bool     `json:"demo"`
}

// Default is the configuration used when no file exists.
func Default() Config {
	return Config{
		BackendURL:        "http://127.0.0.1:8080",
		PageSize:          10,
		ProcessingGraceMS: 100,
		FocusSettleMS:     50,
		HeadPollSeconds:   15,
		LogLevel:          "info",
	}
}

func (c Config) ProcessingGrace() time.Duration {
	return time.Duration(c.ProcessingGraceMS) * time.Millisecond
}

func (c Config) FocusSettle() time.Duration {
	return time.Duration(c.FocusSettleMS) * time.Millisecond
}

func (c Config) HeadPollInterval() time.Duration {
	return time.Duration(c.HeadPollSeconds) * time.Second
}

func GetConfigPath(customPath string) (string, error) {
	if customPath != "" {
		return customPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

func LoadConfigFromFile(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return LoadConfig(f)
}

func LoadConfig(r io.Reader) (Config, error) {
	var raw struct {
		BackendURL        *string  `json:"backend_url"`
		RPCURL            string   `json:"rpc_url"` // Legacy
		RPCURLs           []string `json:"rpc_urls"`
		PageSize          *int     `json:"page_size"`
		ProcessingGraceMS *int     `json:"processing_grace_ms"`
		FocusSettleMS     *int     `json:"focus_settle_ms"`
		HeadPollSeconds   *int     `json:"head_poll_seconds"`
		PrefsPath         string   `json:"prefs_path"`
		LogFile           string   `json:"log_file"`
		LogLevel          *string  `json:"log_level"`
		Demo              bool     `json:"demo"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if raw.BackendURL != nil {
		cfg.BackendURL = *raw.BackendURL
	}
	cfg.RPCURLs = raw.RPCURLs
	// Migration for legacy single-URL config
	if len(cfg.RPCURLs) == 0 && raw.RPCURL != "" {
		cfg.RPCURLs = []string{raw.RPCURL}
	}
	if raw.PageSize != nil && *raw.PageSize > 0 {
		cfg.PageSize = *raw.PageSize
	}
	if raw.ProcessingGraceMS != nil && *raw.ProcessingGraceMS >= 0 {
		cfg.ProcessingGraceMS = *raw.ProcessingGraceMS
	}
	if raw.FocusSettleMS != nil && *raw.FocusSettleMS >= 0 {
		cfg.FocusSettleMS = *raw.FocusSettleMS
	}
	if raw.HeadPollSeconds != nil {
		cfg.HeadPollSeconds = *raw.HeadPollSeconds
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	cfg.PrefsPath = raw.PrefsPath
	cfg.LogFile = raw.LogFile
	cfg.Demo = raw.Demo
	return cfg, nil
}

// Validate checks the settings a save must not lose.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("validation failed: page_size must be positive, got %d", c.PageSize)
	}
	if !c.Demo && strings.TrimSpace(c.BackendURL) == "" {
		return fmt.Errorf("validation failed: backend_url is required outside demo mode")
	}
	urls := append([]string{}, c.RPCURLs...)
	if c.BackendURL != "" {
		urls = append(urls, c.BackendURL)
	}
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("validation failed: %q is not an absolute URL", raw)
		}
	}
	if c.HeadPollSeconds < 0 {
		return fmt.Errorf("validation failed: head_poll_seconds must not be negative")
	}
	return nil
}

func SaveConfig(cfg Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Create a backup of the existing file
	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
		input, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read existing config for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0644); err != nil {
			return fmt.Errorf("failed to write backup config: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func RestoreLastBackup(configPath string) error {
	matches, err := filepath.Glob(configPath + ".*.bak")
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no backup files found")
	}
	sort.Strings(matches)
	lastBackup := matches[len(matches)-1]

	data, err := os.ReadFile(lastBackup)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}
