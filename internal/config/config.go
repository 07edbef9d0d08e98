// Package config loads rotnet's optional CUE configuration file.
//
// The file is unified with an embedded schema, so unknown fields, wrong
// types and bad layout names are reported with the file position at fault.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/rotnet/internal/board"
)

//go:embed schema.cue
var schemaCUE string

// Config is the resolved configuration.
type Config struct {
	Listen string
	Name   string
	Layout board.Layout
	Tick   time.Duration
	DB     string
	// Seed is nil when the file leaves the chess960 seed to chance.
	Seed *uint64
}

// file mirrors #Config for decoding.
type file struct {
	Listen string  `json:"listen"`
	Name   string  `json:"name"`
	Layout string  `json:"layout"`
	Tick   string  `json:"tick"`
	DB     string  `json:"db"`
	Seed   *uint64 `json:"seed,omitempty"`
}

// Error is a configuration error, positioned in the config file when CUE
// knows where.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg, err := Load("")
	if err != nil {
		// The embedded schema's defaults are always valid.
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load reads path (empty for none) and resolves it against the schema.
func Load(path string) (Config, error) {
	var src []byte
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		src = data
	}
	return parse(path, src)
}

func parse(path string, src []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("config schema: %w", err)
	}
	v := schema.LookupPath(cue.ParsePath("#Config"))

	if path != "" {
		f := ctx.CompileBytes(src, cue.Filename(path))
		if err := f.Err(); err != nil {
			return Config{}, formatCUEError(err, path)
		}
		v = v.Unify(f)
	}
	if err := v.Validate(); err != nil {
		return Config{}, formatCUEError(err, path)
	}

	var raw file
	if err := v.Decode(&raw); err != nil {
		return Config{}, formatCUEError(err, path)
	}

	tick, err := time.ParseDuration(raw.Tick)
	if err != nil {
		return Config{}, &Error{Field: "tick", Message: err.Error(), Pos: v.LookupPath(cue.ParsePath("tick")).Pos()}
	}
	if tick <= 0 {
		return Config{}, &Error{Field: "tick", Message: "must be positive", Pos: v.LookupPath(cue.ParsePath("tick")).Pos()}
	}

	return Config{
		Listen: raw.Listen,
		Name:   raw.Name,
		Layout: board.Layout(raw.Layout),
		Tick:   tick,
		DB:     raw.DB,
		Seed:   raw.Seed,
	}, nil
}

// formatCUEError turns the first CUE error into an *Error, preferring a
// position inside the user's file over one in the embedded schema.
func formatCUEError(err error, path string) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	msg, args := first.Msg()
	cfgErr := &Error{Field: fieldOf(first), Message: fmt.Sprintf(msg, args...)}
	for _, e := range errs {
		for _, pos := range errors.Positions(e) {
			if path != "" && pos.Filename() == path {
				cfgErr.Pos = pos
				return cfgErr
			}
		}
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		cfgErr.Pos = positions[0]
	}
	return cfgErr
}

// fieldOf names the config field an error is about, without the #Config
// prefix.
func fieldOf(err errors.Error) string {
	path := err.Path()
	if len(path) > 0 && path[0] == "#Config" {
		path = path[1:]
	}
	if len(path) == 0 {
		return "config"
	}
	return path[0]
}
