package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"jigsaw-local/library"
	"jigsaw-local/types"
)

const appDir = "jigsaw-local"

var (
	cfgFile = appDir + "/config.json"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

type ConfigColors struct {
	BoardColor     int `json:"board"`
	BoardColorAlt  int `json:"board_alt"`
	EmptySlotColor int `json:"empty_slot"`
	EdgeColor      int `json:"edge"`
	CorrectColor   int `json:"correct"`
	IncorrectColor int `json:"incorrect"`
	CursorColorBG  int `json:"cursor_bg"`
	HeldColorBG    int `json:"held_bg"`
	TrayColor      int `json:"tray"`
}

type ConfigSymbols struct {
	Convex    rune `json:"convex"`
	Concave   rune `json:"concave"`
	EmptySlot rune `json:"empty_slot"`
	Corner    rune `json:"corner"`
}

type Theme struct {
	DrawEdgeGlyphs     bool          `json:"draw_edge_glyphs"`
	ShowPieceNumbers   bool          `json:"show_piece_numbers"`
	HighlightIncorrect bool          `json:"highlight_incorrect"`
	Colors             ConfigColors  `json:"colors"`
	Symbols            ConfigSymbols `json:"symbols"`
}

// GameConfig holds gameplay settings.
type GameConfig struct {
	EnableRotation bool    `json:"enable_rotation"`
	EnableFlip     bool    `json:"enable_flip"`
	DefaultRows    int     `json:"default_rows"`
	DefaultCols    int     `json:"default_cols"`
	PieceWidth     float64 `json:"piece_width"`
	PieceHeight    float64 `json:"piece_height"`
	HistoryDepth   int     `json:"history_depth"`
	SaveTTLHours   int     `json:"save_ttl_hours"`
	Autosave       bool    `json:"autosave"`
}

// SaveTTL is how long an unfinished session stays resumable.
func (g GameConfig) SaveTTL() time.Duration {
	return time.Duration(g.SaveTTLHours) * time.Hour
}

type Config struct {
	Theme Theme      `json:"theme"`
	Game  GameConfig `json:"game"`
}

func InitConfig() (*Config, error) {
	config := DefaultConfig
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err == nil {
		if err := readCfgFile(absPath, &config); err != nil {
			return nil, err
		}
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	for _, r := range []rune{c.Theme.Symbols.Convex, c.Theme.Symbols.Concave, c.Theme.Symbols.EmptySlot, c.Theme.Symbols.Corner} {
		if r < 32 || (r >= 127 && r <= 159) {
			return &InvalidConfig{"Unicode characters 1-31 and 127-159 are not allowed"}
		}
	}
	g := c.Game
	if err := library.ValidateGrid(types.GridConfig{
		Rows: g.DefaultRows, Cols: g.DefaultCols, PieceWidth: g.PieceWidth, PieceHeight: g.PieceHeight,
	}); err != nil {
		return &InvalidConfig{"default grid: " + err.Error()}
	}
	if g.HistoryDepth < 1 {
		return &InvalidConfig{"history depth must be at least 1"}
	}
	if g.SaveTTLHours < 1 {
		return &InvalidConfig{"save ttl must be at least one hour"}
	}
	return nil
}

func (c *Config) Save() error {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return err
	}
	return saveCfgFile(absPath, c, 0664)
}

// DataDir is the root of saved sessions, custom puzzles and statistics.
func DataDir() string {
	return filepath.Join(xdg.DataHome, appDir)
}

// SavesDir holds one JSON record per unfinished session.
func SavesDir() string {
	return filepath.Join(DataDir(), "saves")
}

// PuzzlesDir holds puzzles created in the editor.
func PuzzlesDir() string {
	return filepath.Join(DataDir(), "puzzles")
}

// StatsFile is the user statistics and achievements file.
func StatsFile() string {
	return filepath.Join(DataDir(), "stats.json")
}

// LogFile returns the log path, creating its directory.
func LogFile() (string, error) {
	return xdg.StateFile(appDir + "/jigsaw.log")
}

func saveCfgFile(filePath string, a interface{}, perm fs.FileMode) error {
	jsonData, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonData, perm)
}

func readCfgFile(filePath string, a interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, a); err != nil {
		return &InvalidConfig{fmt.Sprintf("%s: %v", filePath, err)}
	}
	return nil
}
