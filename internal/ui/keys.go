package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/TimelordUK/texlog/internal/config"
	"github.com/TimelordUK/texlog/pkg/texlog"
)

// keyMap holds the configurable bindings
type keyMap struct {
	Quit      key.Binding
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Filter    key.Binding
	Where     key.Binding
	Goto      key.Binding
	ToggleLog key.Binding
	Jump      key.Binding
	Export    key.Binding
	Reload    key.Binding
	Levels    key.Binding
}

func binding(keys []string, help, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

func newKeyMap(cfg config.KeybindingConfig) keyMap {
	return keyMap{
		Quit:      binding(cfg.Quit, "q", "quit"),
		Up:        binding(cfg.ScrollUp, "k", "up"),
		Down:      binding(cfg.ScrollDown, "j", "down"),
		PageUp:    binding(cfg.PageUp, "b", "page up"),
		PageDown:  binding(cfg.PageDown, "f", "page down"),
		Top:       binding(cfg.Top, "g", "top"),
		Bottom:    binding(cfg.Bottom, "G", "bottom"),
		Filter:    binding(cfg.Filter, "/", "filter"),
		Where:     binding(cfg.Where, "x", "where"),
		Goto:      binding(cfg.Goto, ":", "goto"),
		ToggleLog: binding(cfg.ToggleLog, "tab", "log"),
		Jump:      binding(cfg.Jump, "enter", "show in log"),
		Export:    binding(cfg.Export, "e", "export"),
		Reload:    binding(cfg.Reload, "r", "reload"),
		Levels:    binding([]string{"0", "1", "2", "3", "4", "5"}, "0-5", "min level"),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Levels, k.Filter, k.Where, k.ToggleLog, k.Export, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Levels, k.Filter, k.Where, k.Goto},
		{k.ToggleLog, k.Jump, k.Export, k.Reload, k.Quit},
	}
}

// levelForKey maps the digit keys to a minimum level: 1 shows everything,
// 5 only errors. 0 clears the level filter.
func levelForKey(s string) (texlog.Level, bool) {
	switch s {
	case "1":
		return texlog.LevelDebug, true
	case "2":
		return texlog.LevelInfo, true
	case "3":
		return texlog.LevelTypesetting, true
	case "4":
		return texlog.LevelWarning, true
	case "5":
		return texlog.LevelError, true
	}
	return 0, false
}
