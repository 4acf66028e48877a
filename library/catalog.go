package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"jigsaw-local/types"
)

var (
	ErrNotFound = errors.New("puzzle not found")
	ErrReadOnly = errors.New("built-in puzzles cannot be changed")
)

// Catalog lists built-in puzzles and stores custom ones as JSON files in a
// directory.
type Catalog struct {
	dir     string
	builtin []types.PuzzleData
}

func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir, builtin: Builtin()}
}

func (c *Catalog) path(id string) string {
	return filepath.Join(c.dir, id+".json")
}

// Add validates p and stores it, replacing a custom puzzle with the same id.
func (c *Catalog) Add(ctx context.Context, p types.PuzzleData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if IsBuiltin(p.ID) {
		return ErrReadOnly
	}
	if p.ID == "" || strings.ContainsAny(p.ID, `/\.`) {
		return &ValidationError{"id", "must be a plain identifier"}
	}
	if err := ValidateGrid(p.Grid); err != nil {
		return err
	}
	if err := ValidateBoundaries(p.Grid, p.Boundaries); err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create puzzle dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode puzzle: %w", err)
	}
	if err := os.WriteFile(c.path(p.ID), data, 0o644); err != nil {
		return fmt.Errorf("write puzzle: %w", err)
	}
	return nil
}

// Get finds a puzzle by id, built-in or custom.
func (c *Catalog) Get(ctx context.Context, id string) (types.PuzzleData, error) {
	if err := ctx.Err(); err != nil {
		return types.PuzzleData{}, err
	}
	for _, p := range c.builtin {
		if p.ID == id {
			return p, nil
		}
	}
	if IsBuiltin(id) || strings.ContainsAny(id, `/\.`) || id == "" {
		return types.PuzzleData{}, ErrNotFound
	}
	p, err := readPuzzle(c.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return types.PuzzleData{}, ErrNotFound
	}
	return p, err
}

// List returns built-in puzzles in their fixed order, then custom puzzles
// oldest first. Unreadable files are skipped.
func (c *Catalog) List(ctx context.Context) ([]types.PuzzleData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]types.PuzzleData, len(c.builtin))
	copy(out, c.builtin)

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("read puzzle dir: %w", err)
	}
	var custom []types.PuzzleData
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		p, err := readPuzzle(filepath.Join(c.dir, e.Name()))
		if err != nil || p.ID == "" {
			continue
		}
		custom = append(custom, p)
	}
	sort.SliceStable(custom, func(i, j int) bool {
		if custom[i].CreatedAt.Equal(custom[j].CreatedAt) {
			return custom[i].Name < custom[j].Name
		}
		return custom[i].CreatedAt.Before(custom[j].CreatedAt)
	})
	return append(out, custom...), nil
}

// Remove deletes a custom puzzle.
func (c *Catalog) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if IsBuiltin(id) {
		return ErrReadOnly
	}
	if id == "" || strings.ContainsAny(id, `/\.`) {
		return ErrNotFound
	}
	if err := os.Remove(c.path(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("remove puzzle: %w", err)
	}
	return nil
}

func readPuzzle(path string) (types.PuzzleData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.PuzzleData{}, err
	}
	var p types.PuzzleData
	if err := json.Unmarshal(data, &p); err != nil {
		return types.PuzzleData{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return p, nil
}
