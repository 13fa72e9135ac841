package profile

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/seojin-dev/boardwatch/internal/board"
)

//go:embed chesscom.yaml
var defaultFiles embed.FS

// Profile maps a board site's visual vocabulary onto the data model: piece
// class codes and end-panel title patterns. The embedded default covers the
// chess.com-style source; an override directory can patch or extend it for
// other skins without a rebuild.
type Profile struct {
	pieces map[string]board.Piece
	titles map[string][]string // outcome key → lowercase title substrings
}

type rawProfile struct {
	Pieces map[string]string   `yaml:"pieces"`
	Titles map[string][]string `yaml:"titles"`
}

// Load reads the embedded default and then applies *.yaml overrides from
// dir if provided, in lexical order.
func Load(overrideDir string) (*Profile, error) {
	p := &Profile{
		pieces: make(map[string]board.Piece),
		titles: make(map[string][]string),
	}
	raw, err := fs.ReadFile(defaultFiles, "chesscom.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded profile: %w", err)
	}
	if err := p.apply(raw); err != nil {
		return nil, fmt.Errorf("embedded profile: %w", err)
	}
	if strings.TrimSpace(overrideDir) != "" {
		if err := p.applyDir(overrideDir); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Profile) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read profile dir: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, name := range files {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := p.apply(b); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
	}
	return nil
}

func (p *Profile) apply(b []byte) error {
	var raw rawProfile
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return err
	}
	for code, spec := range raw.Pieces {
		piece, ok := board.ParsePiece(spec)
		if !ok {
			return fmt.Errorf("bad piece spec %q for code %q", spec, code)
		}
		p.pieces[strings.ToLower(strings.TrimSpace(code))] = piece
	}
	for key, patterns := range raw.Titles {
		key = strings.ToLower(strings.TrimSpace(key))
		switch key {
		case "white", "black", "draw":
		default:
			return fmt.Errorf("unknown outcome key %q", key)
		}
		cleaned := make([]string, 0, len(patterns))
		for _, pat := range patterns {
			pat = strings.ToLower(strings.TrimSpace(pat))
			if pat != "" {
				cleaned = append(cleaned, pat)
			}
		}
		p.titles[key] = cleaned // override replaces the whole key
	}
	return nil
}

// Piece resolves a site piece code. Unknown codes fall back to the compact
// two-letter form so fresh skins degrade gracefully.
func (p *Profile) Piece(code string) (board.Piece, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if piece, ok := p.pieces[code]; ok {
		return piece, true
	}
	return board.ParsePiece(code)
}

// Outcome matches an end-panel title against the known patterns, returning
// the winner color (NoColor for a draw) and the PGN result token.
func (p *Profile) Outcome(title string) (board.Color, string, bool) {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return board.NoColor, "", false
	}
	if p.match("white", title) {
		return board.White, "1-0", true
	}
	if p.match("black", title) {
		return board.Black, "0-1", true
	}
	if p.match("draw", title) {
		return board.NoColor, "1/2-1/2", true
	}
	return board.NoColor, "", false
}

func (p *Profile) match(key, title string) bool {
	for _, pat := range p.titles[key] {
		if strings.Contains(title, pat) {
			return true
		}
	}
	return false
}
