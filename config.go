package bhavledger

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config points the pipeline at its data files. All paths are resolved
// relative to BaseDir when not absolute.
type Config struct {
	BaseDir       string `yaml:"base_dir"`
	MasterList    string `yaml:"master_list"`    // tracked symbol universe
	DailyDir      string `yaml:"daily_dir"`      // raw market-wide daily files
	RawDir        string `yaml:"raw_dir"`        // per-symbol raw ledgers
	AdjustedDir   string `yaml:"adjusted_dir"`   // per-symbol adjusted ledgers
	DisclosureDir string `yaml:"disclosure_dir"` // per-symbol disclosure corpus
	ActionsMaster string `yaml:"actions_master"` // parsed ActionEvent file
	FactorFile    string `yaml:"factor_file"`    // AdjustmentFactor file
	SymbolMap     string `yaml:"symbol_map"`     // old->new symbol rename map
}

// DefaultConfig mirrors the historical on-disk layout of the dataset.
func DefaultConfig() Config {
	return Config{
		BaseDir:       ".",
		MasterList:    "0_Script_Master_List.csv",
		DailyDir:      "NSE_Bhavcopy_Master_Data",
		RawDir:        "NSE_Bhavcopy_Scriptwise_Data",
		AdjustedDir:   "NSE_Bhavcopy_Adjusted_Data",
		DisclosureDir: "NSE_Corporate_Actions_Data",
		ActionsMaster: "Corporate_Actions_Master.csv",
		FactorFile:    "Calculated_Adjustments.csv",
		SymbolMap:     "symbol_change_map.json",
	}
}

// LoadConfig reads a YAML config file. A missing file yields the defaults;
// fields absent from the file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("cannot read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config %q: %w", path, err)
	}
	return cfg, nil
}

// resolve joins a configured path with the base directory.
func (c Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

func (c Config) MasterListPath() string    { return c.resolve(c.MasterList) }
func (c Config) DailyDirPath() string      { return c.resolve(c.DailyDir) }
func (c Config) RawDirPath() string        { return c.resolve(c.RawDir) }
func (c Config) AdjustedDirPath() string   { return c.resolve(c.AdjustedDir) }
func (c Config) DisclosureDirPath() string { return c.resolve(c.DisclosureDir) }
func (c Config) ActionsMasterPath() string { return c.resolve(c.ActionsMaster) }
func (c Config) FactorFilePath() string    { return c.resolve(c.FactorFile) }
func (c Config) SymbolMapPath() string     { return c.resolve(c.SymbolMap) }
