package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	appdefaults "github.com/saker-ai/classroom-avatar/config"
	"github.com/saker-ai/classroom-avatar/internal/logger"
)

const envPrefix = "classroom"

// SystemConfig represents a systemConfig.
type SystemConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	ConfigAltsDir string `mapstructure:"config_alts_dir"`
}

// CharacterConfig describes the avatar a client talks to.
type CharacterConfig struct {
	ConfName       string            `mapstructure:"conf_name" yaml:"conf_name"`
	ConfUID        string            `mapstructure:"conf_uid" yaml:"conf_uid"`
	CharacterName  string            `mapstructure:"character_name" yaml:"character_name"`
	ModelFile      string            `mapstructure:"model_file" yaml:"model_file"`
	Locale         string            `mapstructure:"locale" yaml:"locale"`
	PreferredVoice string            `mapstructure:"preferred_voice" yaml:"preferred_voice"`
	Introduction   string            `mapstructure:"introduction" yaml:"introduction"`
	Greeting       string            `mapstructure:"greeting" yaml:"greeting"`
	Clips          map[string]string `mapstructure:"clips" yaml:"clips"`
}

// BehaviorConfig holds timing and geometry for the behaviour loop.
type BehaviorConfig struct {
	WaveRevertMs         int     `mapstructure:"wave_revert_ms"`
	JumpRevertMs         int     `mapstructure:"jump_revert_ms"`
	MoveCooldownMs       int     `mapstructure:"move_cooldown_ms"`
	PixelsPerUnit        float64 `mapstructure:"pixels_per_unit"`
	AvatarHalfWidth      float64 `mapstructure:"avatar_half_width"`
	ViewportWidth        float64 `mapstructure:"viewport_width"`
	VoicePollIntervalMs  int     `mapstructure:"voice_poll_interval_ms"`
	VoicePollMaxAttempts int     `mapstructure:"voice_poll_max_attempts"`
	LipSyncJitter        bool    `mapstructure:"lip_sync_jitter"`
}

// Config represents a config.
type Config struct {
	RootDir         string          `mapstructure:"-"`
	HTTPAddr        string          `mapstructure:"http_addr"`
	ConfigAltsDir   string          `mapstructure:"config_alts_dir"`
	ModelsDir       string          `mapstructure:"models_dir"`
	FrontendDir     string          `mapstructure:"frontend_dir"`
	ChatHistoryDir  string          `mapstructure:"chat_history_dir"`
	TLSCertPath     string          `mapstructure:"tls_cert_path"`
	TLSKeyPath      string          `mapstructure:"tls_key_path"`
	TLSRequired     bool            `mapstructure:"tls_required"`
	TLSDisable      bool            `mapstructure:"tls_disable"`
	SystemConfig    SystemConfig    `mapstructure:"system_config"`
	CharacterConfig CharacterConfig `mapstructure:"character_config"`
	Behavior        BehaviorConfig  `mapstructure:"behavior"`
	Log             logger.Config   `mapstructure:"log"`
}

// Load reads the embedded defaults, then conf.yaml from the root directory,
// then CLASSROOM_* environment overrides (a .env file in the root is honoured).
func Load() (Config, error) {
	rootDir, err := resolveRootDir()
	if err != nil {
		return Config{}, err
	}
	if err := loadDotEnv(rootDir); err != nil {
		return Config{}, err
	}

	v, err := newViper()
	if err != nil {
		return Config{}, err
	}
	v.SetConfigName("conf")
	v.SetConfigType("yaml")
	v.AddConfigPath(rootDir)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}
	return finish(v, rootDir)
}

// LoadConfig loads an explicit config file; an empty path falls back to Load.
func LoadConfig(configPath string) (Config, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		return Load()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, err
	}

	rootDir := strings.TrimSpace(os.Getenv("CLASSROOM_ROOT_DIR"))
	if rootDir == "" {
		rootDir = filepath.Dir(absPath)
		if filepath.Base(rootDir) == "config" {
			rootDir = filepath.Dir(rootDir)
		}
	}
	if err := loadDotEnv(rootDir); err != nil {
		return Config{}, err
	}

	v, err := newViper()
	if err != nil {
		return Config{}, err
	}
	v.SetConfigFile(absPath)
	if err := v.MergeInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", absPath, err)
	}
	return finish(v, rootDir)
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(appdefaults.Default)); err != nil {
		return nil, fmt.Errorf("load embedded config: %w", err)
	}

	v.SetDefault("http_addr", "")
	v.SetDefault("config_alts_dir", "")
	v.SetDefault("models_dir", "")
	v.SetDefault("frontend_dir", "")
	v.SetDefault("chat_history_dir", "")
	v.SetDefault("tls_cert_path", "")
	v.SetDefault("tls_key_path", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

func finish(v *viper.Viper, rootDir string) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.RootDir = rootDir
	deriveHTTPAddr(&cfg)
	derivePaths(&cfg)
	cfg.CharacterConfig = NormalizeCharacter(cfg.CharacterConfig)
	return cfg, nil
}

func loadDotEnv(rootDir string) error {
	err := godotenv.Load(filepath.Join(rootDir, ".env"))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

func deriveHTTPAddr(cfg *Config) {
	if cfg.HTTPAddr != "" {
		return
	}
	host := cfg.SystemConfig.Host
	port := cfg.SystemConfig.Port
	if port == 0 {
		port = 8101
	}
	if host == "" {
		cfg.HTTPAddr = fmt.Sprintf(":%d", port)
		return
	}
	cfg.HTTPAddr = net.JoinHostPort(host, strconv.Itoa(port))
}

func resolveRootDir() (string, error) {
	if root := strings.TrimSpace(os.Getenv("CLASSROOM_ROOT_DIR")); root != "" {
		return filepath.Abs(root)
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := wd
	for i := 0; i < 6; i++ {
		if fileExists(filepath.Join(dir, "conf.yaml")) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return wd, nil
}

func derivePaths(cfg *Config) {
	configAlts := cfg.ConfigAltsDir
	if configAlts == "" {
		configAlts = cfg.SystemConfig.ConfigAltsDir
	}
	cfg.ConfigAltsDir = resolvePath(cfg.RootDir, configAlts, "characters")
	cfg.ModelsDir = resolvePath(cfg.RootDir, cfg.ModelsDir, filepath.Join("webassets", "models"))
	cfg.FrontendDir = resolvePath(cfg.RootDir, cfg.FrontendDir, filepath.Join("webassets", "classroom"))
	cfg.ChatHistoryDir = resolvePath(cfg.RootDir, cfg.ChatHistoryDir, filepath.Join("data", "classroom", "history"))
	cfg.TLSCertPath = resolvePath(cfg.RootDir, cfg.TLSCertPath, filepath.Join("certs", "server.crt"))
	cfg.TLSKeyPath = resolvePath(cfg.RootDir, cfg.TLSKeyPath, filepath.Join("certs", "server.key"))
}

// NormalizeCharacter fills derived character fields.
func NormalizeCharacter(character CharacterConfig) CharacterConfig {
	if character.ConfUID == "" {
		base := character.ConfName
		if base == "" {
			base = strings.TrimSuffix(character.ModelFile, filepath.Ext(character.ModelFile))
		}
		character.ConfUID = sanitizeConfUID(base)
	} else {
		character.ConfUID = sanitizeConfUID(character.ConfUID)
	}
	if character.ConfName == "" {
		character.ConfName = character.ConfUID
	}
	if character.CharacterName == "" {
		character.CharacterName = character.ConfName
	}
	if character.Locale == "" {
		character.Locale = "en-US"
	}
	clips := make(map[string]string, 3)
	for _, state := range []string{"idle", "wave", "jump"} {
		clips[state] = state
	}
	for state, clip := range character.Clips {
		state = strings.ToLower(strings.TrimSpace(state))
		if clip = strings.TrimSpace(clip); state != "" && clip != "" {
			clips[state] = clip
		}
	}
	character.Clips = clips
	return character
}

// ModelPath returns the model file of a character on disk.
func (c Config) ModelPath(character CharacterConfig) string {
	if character.ModelFile == "" {
		return ""
	}
	return resolvePath(c.ModelsDir, character.ModelFile, "")
}

func sanitizeConfUID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "default"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "._-")
	if out == "" {
		return "default"
	}
	return out
}

func resolvePath(rootDir string, configured string, fallback string) string {
	path := strings.TrimSpace(configured)
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
