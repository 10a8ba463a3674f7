package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileInfo represents a configFileInfo.
type ConfigFileInfo struct {
	Filename string `json:"filename"`
	Name     string `json:"name"`
}

type configFilePayload struct {
	CharacterConfig CharacterConfig `yaml:"character_config"`
}

// ScanConfigFiles lists conf.yaml plus every character yaml under configAltsDir.
func ScanConfigFiles(rootDir string, configAltsDir string) ([]ConfigFileInfo, error) {
	configs := []ConfigFileInfo{}
	defaultConf, err := ReadCharacterConfig(filepath.Join(rootDir, "conf.yaml"))
	if err == nil {
		configs = append(configs, ConfigFileInfo{Filename: "conf.yaml", Name: defaultConf.ConfName})
	} else {
		configs = append(configs, ConfigFileInfo{Filename: "conf.yaml", Name: "conf.yaml"})
	}

	if configAltsDir == "" {
		return configs, nil
	}

	// Only the top level is listed; switch-config resolves bare file names.
	entries, err := os.ReadDir(configAltsDir)
	if err != nil {
		return configs, nil
	}
	for _, d := range entries {
		if d.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		conf, err := ReadCharacterConfig(filepath.Join(configAltsDir, d.Name()))
		name := d.Name()
		if err == nil && conf.ConfName != "" {
			name = conf.ConfName
		}
		configs = append(configs, ConfigFileInfo{Filename: d.Name(), Name: name})
	}
	return configs, nil
}

// ReadCharacterConfig reads the character_config section of a yaml file.
func ReadCharacterConfig(path string) (CharacterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CharacterConfig{}, err
	}
	var payload configFilePayload
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return CharacterConfig{}, err
	}
	if payload.CharacterConfig.ConfName == "" {
		payload.CharacterConfig.ConfName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return payload.CharacterConfig, nil
}

// MergeCharacter overlays the non-empty fields of override onto base.
func MergeCharacter(base CharacterConfig, override CharacterConfig) CharacterConfig {
	out := base
	if override.ConfName != "" {
		out.ConfName = override.ConfName
		out.ConfUID = ""
		out.CharacterName = ""
	}
	if override.ConfUID != "" {
		out.ConfUID = override.ConfUID
	}
	if override.CharacterName != "" {
		out.CharacterName = override.CharacterName
	}
	if override.ModelFile != "" {
		out.ModelFile = override.ModelFile
	}
	if override.Locale != "" {
		out.Locale = override.Locale
	}
	if override.PreferredVoice != "" {
		out.PreferredVoice = override.PreferredVoice
	}
	if override.Introduction != "" {
		out.Introduction = override.Introduction
	}
	if override.Greeting != "" {
		out.Greeting = override.Greeting
	}
	if len(override.Clips) > 0 {
		clips := make(map[string]string, len(base.Clips)+len(override.Clips))
		for k, v := range base.Clips {
			clips[k] = v
		}
		for k, v := range override.Clips {
			clips[k] = v
		}
		out.Clips = clips
	}
	return NormalizeCharacter(out)
}
