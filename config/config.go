// Package config reads settings from a .env file with RENTMAN_* environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EnvPrefix is prepended to a key to get the name of the overriding
// environment variable e.g. RENTMAN_DATA_DIR
const EnvPrefix = "RENTMAN_"

type S3 struct {
	Endpoint string
	Access   string
	Secret   string
	Bucket   string
	Region   string
}

type SFTP struct {
	User string
	Host string
	// path of the private key file
	Key string
	// remote directory for backups
	Dir string
}

type HTTP struct {
	URL    string
	APIKey string
}

type Config struct {
	DataDir         string
	LogDir          string
	JournalDir      string
	CredentialsFile string
	Verbose         bool

	S3   S3
	SFTP SFTP
	HTTP HTTP
}

// ParseEnv parses KEY=value lines. Empty lines and lines starting with
// '#' are ignored.
func ParseEnv(d []byte) (map[string]string, error) {
	s := strings.ReplaceAll(string(d), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	m := make(map[string]string)
	for i, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid line %d '%s' in .env", i+1, line)
		}
		val = strings.TrimSpace(val)
		m[key] = unquote(val)
	}
	return m, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		c := s[0]
		if (c == '"' || c == '\'') && s[len(s)-1] == c {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Default returns config with data in dataDir
func Default(dataDir string) *Config {
	c := &Config{
		DataDir: dataDir,
	}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.JournalDir == "" {
		c.JournalDir = filepath.Join(c.DataDir, "journal")
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = filepath.Join(c.DataDir, "user.txt")
	}
}

// FromMap builds config from parsed .env values. Values in env (usually
// os.Getenv) under EnvPrefix+key take precedence.
func FromMap(m map[string]string, getenv func(string) string) (*Config, error) {
	get := func(key string) string {
		if getenv != nil {
			if v := getenv(EnvPrefix + key); v != "" {
				return v
			}
		}
		return m[key]
	}
	c := &Config{
		DataDir:         get("DATA_DIR"),
		LogDir:          get("LOG_DIR"),
		JournalDir:      get("JOURNAL_DIR"),
		CredentialsFile: get("CREDENTIALS_FILE"),
		S3: S3{
			Endpoint: get("S3_ENDPOINT"),
			Access:   get("S3_ACCESS"),
			Secret:   get("S3_SECRET"),
			Bucket:   get("S3_BUCKET"),
			Region:   get("S3_REGION"),
		},
		SFTP: SFTP{
			User: get("SFTP_USER"),
			Host: get("SFTP_HOST"),
			Key:  get("SFTP_KEY"),
			Dir:  get("SFTP_DIR"),
		},
		HTTP: HTTP{
			URL:    get("HTTP_BACKUP_URL"),
			APIKey: get("HTTP_BACKUP_KEY"),
		},
	}
	if v := get("VERBOSE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid VERBOSE value '%s': %w", v, err)
		}
		c.Verbose = b
	}
	c.applyDefaults()
	return c, nil
}

// Load reads config from a .env file at path. A missing file is not
// an error when path is empty or the file is optional.
func Load(path string, optional bool, getenv func(string) string) (*Config, error) {
	m := map[string]string{}
	if path != "" {
		d, err := os.ReadFile(path)
		switch {
		case err == nil:
			m, err = ParseEnv(d)
			if err != nil {
				return nil, fmt.Errorf("config '%s': %w", path, err)
			}
		case os.IsNotExist(err) && optional:
			// use defaults
		default:
			return nil, err
		}
	}
	return FromMap(m, getenv)
}
