// Package content loads the fixed routine item lists.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/sandeepkv93/wird/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed routines.yaml
var defaultRoutines []byte

var ErrUnknownRoutine = errors.New("content: unknown routine")

// Source exposes the ordered item list for each routine type.
type Source interface {
	Routine(routine model.RoutineType) (model.Routine, error)
}

type document struct {
	Version  int                     `yaml:"version"`
	Routines map[string][]model.Item `yaml:"routines"`
}

// Catalog is an immutable set of routines for one content version.
type Catalog struct {
	Version  int
	routines map[model.RoutineType]model.Routine
}

var _ Source = (*Catalog)(nil)

func Default() (*Catalog, error) {
	return Parse(defaultRoutines)
}

func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes a routines document. Both routine types must be present.
func Parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode routines: %w", err)
	}
	c := &Catalog{Version: doc.Version, routines: make(map[model.RoutineType]model.Routine, len(doc.Routines))}
	for name, items := range doc.Routines {
		rt, err := model.ParseRoutineType(name)
		if err != nil {
			return nil, err
		}
		r := model.Routine{Type: rt, Items: items}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		c.routines[rt] = r
	}
	for _, rt := range model.RoutineTypes {
		if _, ok := c.routines[rt]; !ok {
			return nil, fmt.Errorf("%w: %s missing from content", ErrUnknownRoutine, rt)
		}
	}
	return c, nil
}

func (c *Catalog) Routine(routine model.RoutineType) (model.Routine, error) {
	r, ok := c.routines[routine]
	if !ok {
		return model.Routine{}, fmt.Errorf("%w: %q", ErrUnknownRoutine, routine)
	}
	items := make([]model.Item, len(r.Items))
	copy(items, r.Items)
	return model.Routine{Type: r.Type, Items: items}, nil
}
