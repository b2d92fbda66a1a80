package config

import (
	"errors"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "haru.db"
	DefaultLogName        = "haru.log"
)

type Keymap struct {
	Quit        string `toml:"quit"`
	Add         string `toml:"add"`
	Up          string `toml:"up"`
	Down        string `toml:"down"`
	MoveUp      string `toml:"move_up"`
	MoveDown    string `toml:"move_down"`
	Toggle      string `toml:"toggle"`
	Delete      string `toml:"delete"`
	Archive     string `toml:"archive"`
	Confirm     string `toml:"confirm"`
	Cancel      string `toml:"cancel"`
	Edit        string `toml:"edit"`
	Search      string `toml:"search"`
	NextFrame   string `toml:"next_frame"`
	PrevFrame   string `toml:"prev_frame"`
	Subtask     string `toml:"subtask"`
	Comment     string `toml:"comment"`
	ShowArchive string `toml:"show_archive"`
}

type Config struct {
	DBPath           string `toml:"db_path"`
	LogPath          string `toml:"log_path"`
	DefaultTimeFrame string `toml:"default_time_frame"`
	Keys             Keymap `toml:"keys"`
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.LogPath == "" {
		cfg.LogPath = DefaultLogName
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:           DefaultDBName,
		LogPath:          DefaultLogName,
		DefaultTimeFrame: "",
		Keys: Keymap{
			Quit:        "q",
			Add:         "a",
			Up:          "k",
			Down:        "j",
			MoveUp:      "K",
			MoveDown:    "J",
			Toggle:      " ",
			Delete:      "d",
			Archive:     "x",
			Confirm:     "enter",
			Cancel:      "esc",
			Edit:        "e",
			Search:      "/",
			NextFrame:   "tab",
			PrevFrame:   "shift+tab",
			Subtask:     "s",
			Comment:     "c",
			ShowArchive: "z",
		},
	}
}
