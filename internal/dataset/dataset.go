// Package dataset reads an offline snapshot of candidates, openings and
// applications from a YAML file, so matching can run without a database.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
	"github.com/spigell/apprenticeship-matcher/internal/profile"
)

// Dataset is the decoded content of a snapshot file.
type Dataset struct {
	Candidates   []apprenticeship.Candidate   `mapstructure:"candidates"`
	Companies    []apprenticeship.Company     `mapstructure:"companies"`
	Openings     []apprenticeship.Opening     `mapstructure:"openings"`
	Applications []apprenticeship.Application `mapstructure:"applications"`
}

// Load reads and decodes the snapshot at path.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %q: %w", path, err)
	}

	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", path, err)
	}
	return ds, nil
}

// Parse decodes a YAML snapshot. List fields accept either YAML sequences or
// comma separated text; scalar ids may be numbers.
func Parse(data []byte) (*Dataset, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	ds := &Dataset{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       commaListHook,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           ds,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	if err := ds.check(); err != nil {
		return nil, err
	}
	return ds, nil
}

var stringSliceType = reflect.TypeOf([]string(nil))

// commaListHook turns "Riyadh, Jeddah" into []string{"Riyadh", "Jeddah"}.
func commaListHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != stringSliceType {
		return data, nil
	}
	return profile.SplitList(reflect.ValueOf(data).String()), nil
}

// check resolves application statuses and references. Field level rules are
// left to the matching engine.
func (d *Dataset) check() error {
	candidates := make(map[string]struct{}, len(d.Candidates))
	for _, c := range d.Candidates {
		candidates[c.ID] = struct{}{}
	}
	openings := make(map[string]struct{}, len(d.Openings))
	for _, o := range d.Openings {
		openings[o.ID] = struct{}{}
	}

	for i := range d.Applications {
		a := &d.Applications[i]
		if a.Status == "" {
			a.Status = apprenticeship.StatusPending
		}
		if !a.Status.Valid() {
			return fmt.Errorf("application %d: unknown status %q", i, a.Status)
		}
		if _, ok := candidates[a.CandidateID]; !ok {
			return fmt.Errorf("application %d: unknown candidate %q", i, a.CandidateID)
		}
		if _, ok := openings[a.OpeningID]; !ok {
			return fmt.Errorf("application %d: unknown opening %q", i, a.OpeningID)
		}
	}

	return nil
}

// FetchCandidates returns the candidates in file order.
func (d *Dataset) FetchCandidates(context.Context) ([]apprenticeship.Candidate, error) {
	return d.Candidates, nil
}

// FetchOpenings returns the openings in file order.
func (d *Dataset) FetchOpenings(context.Context) ([]apprenticeship.Opening, error) {
	return d.Openings, nil
}

func (d *Dataset) FetchAppliedOpeningIDs(_ context.Context, candidateID string) (map[string]struct{}, error) {
	applied := make(map[string]struct{})
	for _, a := range d.Applications {
		if a.CandidateID == candidateID {
			applied[a.OpeningID] = struct{}{}
		}
	}
	return applied, nil
}

// ErrUnknownCandidate is returned by GetCandidate for ids missing from the file.
var ErrUnknownCandidate = errors.New("candidate not found in dataset")

func (d *Dataset) GetCandidate(_ context.Context, id string) (*apprenticeship.Candidate, error) {
	for i := range d.Candidates {
		if d.Candidates[i].ID == id {
			c := d.Candidates[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", id, ErrUnknownCandidate)
}
