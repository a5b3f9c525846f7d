// Package explorer holds the classified dataset for an interactive session and
// assembles the dashboard tables for one selection.
package explorer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/KaramelBytes/premium-explorer/internal/dataset"
	"github.com/KaramelBytes/premium-explorer/internal/features"
	"github.com/KaramelBytes/premium-explorer/internal/risk"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Options configure loading and classification.
type Options struct {
	Load dataset.Options
	Risk risk.Config
}

// DefaultOptions loads the first sheet and uses the rank policy.
func DefaultOptions() Options {
	return Options{Load: dataset.DefaultOptions(), Risk: risk.DefaultConfig()}
}

// Fingerprint identifies a version of the source file.
type Fingerprint struct {
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

func fingerprint(path string) (Fingerprint, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("stat dataset: %w", err)
	}
	return Fingerprint{Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

// Snapshot is one classified version of the dataset. It is never modified
// after it is built.
type Snapshot struct {
	ID             string
	Source         string
	Fingerprint    Fingerprint
	LoadedAt       time.Time
	Table          *dataset.Table
	Classification *risk.Classification
}

// Session keeps the classified table resident between interactions.
type Session struct {
	path string
	opt  Options
	snap *Snapshot
	fits int
}

// Open loads, derives and classifies the dataset at path.
func Open(ctx context.Context, path string, opt Options) (*Session, error) {
	s := &Session{path: path, opt: opt}
	if err := s.rebuild(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the current classified dataset.
func (s *Session) Snapshot() *Snapshot { return s.snap }

// Fits returns how many times the classifier has been fitted.
func (s *Session) Fits() int { return s.fits }

// Refresh reloads and refits only when the source file's size or modification
// time changed. It reports whether a refit happened. On failure the previous
// snapshot stays in place.
func (s *Session) Refresh(ctx context.Context) (bool, error) {
	fp, err := fingerprint(s.path)
	if err != nil {
		return false, err
	}
	if s.snap != nil && fp.Size == s.snap.Fingerprint.Size && fp.ModTime.Equal(s.snap.Fingerprint.ModTime) {
		log.Debug().Str("snapshot", s.snap.ID).Msg("dataset unchanged; reusing classification")
		return false, nil
	}
	if err := s.rebuild(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) rebuild(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fp, err := fingerprint(s.path)
	if err != nil {
		return err
	}
	raw, err := dataset.Load(s.path, s.opt.Load)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	derived := features.Derive(raw)
	classified, cls, err := risk.Classify(derived, s.opt.Risk)
	if err != nil {
		return fmt.Errorf("classify premiums: %w", err)
	}
	s.fits++
	s.snap = &Snapshot{
		ID:             uuid.New().String(),
		Source:         s.path,
		Fingerprint:    fp,
		LoadedAt:       time.Now(),
		Table:          classified,
		Classification: cls,
	}
	log.Info().
		Str("snapshot", s.snap.ID).
		Str("source", s.path).
		Int("rows", classified.Len()).
		Str("policy", string(cls.Policy)).
		Msg("dataset classified")
	return nil
}
