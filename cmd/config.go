package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configFileName = "longhaul.yaml"

// fileConfig holds operator defaults loaded from longhaul.yaml. Flags given
// on the command line always win over file values.
type fileConfig struct {
	Model      string `yaml:"model"`
	PromptsDir string `yaml:"prompts_dir"`
	LogFile    string `yaml:"log_file"`
}

// loadFileConfig reads longhaul.yaml from the current directory, falling
// back to $HOME. A missing file is not an error.
func loadFileConfig() (*fileConfig, error) {
	paths := []string{configFileName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, configFileName))
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg fileConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return nil, nil
}

// applyConfigDefaults overrides flag defaults with config file values for
// any flag the operator did not set explicitly.
func applyConfigDefaults(cmd *cobra.Command) {
	cfg, err := loadFileConfig()
	if err != nil || cfg == nil {
		return
	}

	if cfg.Model != "" && !cmd.Flags().Changed("model") {
		model = cfg.Model
	}
	if cfg.PromptsDir != "" && !cmd.Flags().Changed("prompts-dir") {
		promptsDir = cfg.PromptsDir
	}
	if cfg.LogFile != "" && !cmd.Flags().Changed("log-file") {
		logFile = cfg.LogFile
	}
}
