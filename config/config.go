package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/minios-linux/i18nsync/dialect"
)

// Environment variables, also read from a .env file in the root directory.
const (
	EnvDialect  = "I18NSYNC_DIALECT"
	EnvConfig   = "I18NSYNC_CONFIG"
	EnvLangFile = "I18NSYNC_LANG_FILE"
)

// EnvFileName is the dotenv file read from the root directory.
const EnvFileName = ".env"

// Env holds the settings taken from the environment.
type Env struct {
	Dialect    string
	ConfigFile string
	LangFile   string
}

// LoadEnv reads rootDir/.env, if present, and the process environment.
// Process variables take precedence over the .env file.
func LoadEnv(rootDir string) (Env, error) {
	vars := map[string]string{}
	path := filepath.Join(rootDir, EnvFileName)
	if _, err := os.Stat(path); err == nil {
		vars, err = godotenv.Read(path)
		if err != nil {
			return Env{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	get := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return vars[key]
	}
	env := Env{
		Dialect:    get(EnvDialect),
		ConfigFile: get(EnvConfig),
		LangFile:   get(EnvLangFile),
	}
	if env.ConfigFile != "" && !filepath.IsAbs(env.ConfigFile) {
		env.ConfigFile = filepath.Join(rootDir, env.ConfigFile)
	}
	if env.LangFile != "" && !filepath.IsAbs(env.LangFile) {
		env.LangFile = filepath.Join(rootDir, env.LangFile)
	}
	return env, nil
}

// Options are the command-line overrides.
type Options struct {
	Root     string
	Dialect  string
	LangFile string
}

// Settings is the resolved configuration of one run.
type Settings struct {
	Root string
	// ConfigPath is the config file that was loaded, or "".
	ConfigPath string
	Registry   *dialect.Registry
	Dialect    *dialect.Dialect
	// LangFile is the explicit combined-layout table file, or "".
	LangFile string
}

// Resolve combines flags, environment, config file and defaults, in that
// order of precedence.
func Resolve(opts Options) (*Settings, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	env, err := LoadEnv(root)
	if err != nil {
		return nil, err
	}

	cfgPath := env.ConfigFile
	if cfgPath == "" {
		cfgPath = filepath.Join(root, SyncFileName)
	}
	sf, err := LoadSyncFilePath(cfgPath)
	if err != nil {
		return nil, err
	}

	s := &Settings{Root: root, Registry: dialect.NewRegistry()}
	if sf != nil {
		s.ConfigPath = cfgPath
		if err := sf.Register(s.Registry); err != nil {
			return nil, fmt.Errorf("%s: %w", cfgPath, err)
		}
	}

	name := firstNonEmpty(opts.Dialect, env.Dialect)
	if name == "" && sf != nil {
		name = sf.Dialect
	}
	s.Dialect, err = s.Registry.Lookup(name)
	if err != nil {
		return nil, err
	}

	s.LangFile = firstNonEmpty(opts.LangFile, env.LangFile, sf.LangFilePath())
	log.Debug().
		Str("root", root).
		Str("config", s.ConfigPath).
		Str("dialect", s.Dialect.Name).
		Str("lang_file", s.LangFile).
		Msg("configuration resolved")
	return s, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
