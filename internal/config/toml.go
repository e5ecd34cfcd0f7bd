// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/telehud/internal/model"
)

// Defaults used when a key is absent or malformed.
const (
	DefaultBarLeft      = 0
	DefaultBarTop       = 130
	DefaultBarWidth     = 300
	DefaultBarHeight    = 20
	DefaultBarGutter    = 5
	DefaultTimeTop      = 0
	DefaultTimeWidth    = 62
	DefaultTimeHeight   = 20
	DefaultFontSize     = 16
	DefaultFontName     = "Arial Black"
	DefaultHiresUpdates = false
	DefaultMagicKey     = 0x54 // 'T'
)

// FileConfig represents the TOML configuration file. Nil fields were absent
// or could not be used and fall back to defaults.
type FileConfig struct {
	Bar      BarSection
	Time     TimeSection
	Keyboard KeyboardSection
	Host     HostSection

	// Invalid lists "section.key" entries that were present but unusable.
	Invalid []string
}

// BarSection maps the [bar] table.
type BarSection struct {
	Enabled *bool
	Left    *int
	Top     *int
	Width   *int
	Height  *int
	Gutter  *int
}

// TimeSection maps the [time] table.
type TimeSection struct {
	Enabled      *bool
	HiresUpdates *bool
	FixRearLoad  *bool
	Top          *int
	Width        *int
	Height       *int
	FontSize     *int
	FontName     *string
}

// KeyboardSection maps the [keyboard] table.
type KeyboardSection struct {
	MagicKey *int
}

// HostSection maps the [host] table used by the terminal host.
type HostSection struct {
	Record *bool
	Seed   *int
}

// LoadConfig reads a TOML config from the given path. Missing file is not an
// error. Keys with the wrong type or a negative value are skipped and listed
// in Invalid; only a file that cannot be parsed at all is an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return parseRaw(raw), nil
}

// ParseConfig decodes TOML text with the same rules as LoadConfig.
func ParseConfig(data string) (FileConfig, error) {
	var raw map[string]any
	if _, err := toml.Decode(data, &raw); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return parseRaw(raw), nil
}

func parseRaw(raw map[string]any) FileConfig {
	p := &parser{raw: raw}
	cfg := FileConfig{
		Bar: BarSection{
			Enabled: p.flag("bar", "enabled"),
			Left:    p.dim("bar", "left"),
			Top:     p.dim("bar", "top"),
			Width:   p.dim("bar", "width"),
			Height:  p.dim("bar", "height"),
			Gutter:  p.dim("bar", "gutter"),
		},
		Time: TimeSection{
			Enabled:      p.flag("time", "enabled"),
			HiresUpdates: p.flag("time", "hires-updates"),
			FixRearLoad:  p.flag("time", "fix-rear-load"),
			Top:          p.dim("time", "top"),
			Width:        p.dim("time", "width"),
			Height:       p.dim("time", "height"),
			FontSize:     p.dim("time", "font-size"),
			FontName:     p.str("time", "font-name"),
		},
		Keyboard: KeyboardSection{
			MagicKey: p.key("keyboard", "magic-key"),
		},
		Host: HostSection{
			Record: p.flag("host", "record"),
			Seed:   p.dim("host", "seed"),
		},
	}
	sort.Strings(p.invalid)
	cfg.Invalid = p.invalid
	return cfg
}

type parser struct {
	raw     map[string]any
	invalid []string
}

func (p *parser) lookup(section, key string) (any, bool) {
	table, ok := p.raw[section].(map[string]any)
	if !ok {
		if _, present := p.raw[section]; present {
			p.reject(section, "")
		}
		return nil, false
	}
	v, ok := table[key]
	return v, ok
}

func (p *parser) reject(section, key string) {
	name := section
	if key != "" {
		name += "." + key
	}
	for _, existing := range p.invalid {
		if existing == name {
			return
		}
	}
	p.invalid = append(p.invalid, name)
}

// dim accepts a non-negative integer.
func (p *parser) dim(section, key string) *int {
	v, ok := p.lookup(section, key)
	if !ok {
		return nil
	}
	n, ok := v.(int64)
	if !ok || n < 0 {
		p.reject(section, key)
		return nil
	}
	out := int(n)
	return &out
}

// flag accepts true/false or the 1/0 style of older config files.
func (p *parser) flag(section, key string) *bool {
	v, ok := p.lookup(section, key)
	if !ok {
		return nil
	}
	var out bool
	switch b := v.(type) {
	case bool:
		out = b
	case int64:
		out = b == 1
	default:
		p.reject(section, key)
		return nil
	}
	return &out
}

func (p *parser) str(section, key string) *string {
	v, ok := p.lookup(section, key)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		p.reject(section, key)
		return nil
	}
	s = truncateName(s, model.FontNameMaxLen-1)
	return &s
}

// key accepts a key code or a single printable character.
func (p *parser) key(section, key string) *int {
	v, ok := p.lookup(section, key)
	if !ok {
		return nil
	}
	var code int
	switch k := v.(type) {
	case int64:
		code = int(k)
	case string:
		r, size := utf8.DecodeRuneInString(k)
		if size != len(k) || r == utf8.RuneError {
			p.reject(section, key)
			return nil
		}
		code = int(r)
	default:
		p.reject(section, key)
		return nil
	}
	if code <= 0 {
		p.reject(section, key)
		return nil
	}
	return &code
}

func truncateName(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := 0
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		if i+size > limit {
			break
		}
		i += size
		cut = i
	}
	return s[:cut]
}

// HUD applies defaults to the file values.
func (c FileConfig) HUD() model.HUDConfig {
	return model.HUDConfig{
		Bar: model.BarConfig{
			Enabled: boolOr(c.Bar.Enabled, true),
			Left:    intOr(c.Bar.Left, DefaultBarLeft),
			Top:     intOr(c.Bar.Top, DefaultBarTop),
			Width:   intOr(c.Bar.Width, DefaultBarWidth),
			Height:  intOr(c.Bar.Height, DefaultBarHeight),
			Gutter:  intOr(c.Bar.Gutter, DefaultBarGutter),
		},
		Time: model.TimeConfig{
			Enabled:      boolOr(c.Time.Enabled, true),
			HiresUpdates: boolOr(c.Time.HiresUpdates, DefaultHiresUpdates),
			FixRearLoad:  boolOr(c.Time.FixRearLoad, false),
			Top:          intOr(c.Time.Top, DefaultTimeTop),
			Width:        intOr(c.Time.Width, DefaultTimeWidth),
			Height:       intOr(c.Time.Height, DefaultTimeHeight),
			FontSize:     intOr(c.Time.FontSize, DefaultFontSize),
			FontName:     stringOr(c.Time.FontName, DefaultFontName),
		},
		Keyboard: model.KeyboardConfig{
			MagicKey: intOr(c.Keyboard.MagicKey, DefaultMagicKey),
		},
	}
}

// FileSource loads the HUD configuration from a TOML file on every Load.
// Problems are logged and never fatal.
type FileSource struct {
	Path   string
	Logger *log.Logger
}

// Load implements hud.ConfigSource.
func (s FileSource) Load() model.HUDConfig {
	logger := s.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	cfg, err := LoadConfig(s.Path)
	if err != nil {
		logger.Printf("config: %v; using defaults", err)
		return FileConfig{}.HUD()
	}
	for _, name := range cfg.Invalid {
		logger.Printf("config: ignoring invalid value for %s", name)
	}
	return cfg.HUD()
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
