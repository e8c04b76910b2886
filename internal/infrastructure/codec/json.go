package codec

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/domain/entities"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

//go:embed profile.schema.json
var profileSchemaJSON []byte

var (
	profileSchema     *jsonschema.Schema
	profileSchemaErr  error
	profileSchemaOnce sync.Once
)

func compiledProfileSchema() (*jsonschema.Schema, error) {
	profileSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("profile.schema.json", bytes.NewReader(profileSchemaJSON)); err != nil {
			profileSchemaErr = fmt.Errorf("failed to add profile schema: %w", err)
			return
		}
		profileSchema, profileSchemaErr = compiler.Compile("profile.schema.json")
	})
	return profileSchema, profileSchemaErr
}

// jsonRecord is the on-disk json layout.
type jsonRecord struct {
	Labels       []string    `json:"labels"`
	MixtureLabel string      `json:"mixture_label"`
	XAxis        []float64   `json:"x_axis"`
	Profiles     [][]float64 `json:"profiles"`
	Mixture      []float64   `json:"mixture"`
	Mode         string      `json:"mode,omitempty"`
}

// JSONCodec stores a collection as one indented json document.
type JSONCodec struct{}

// NewJSONCodec creates a new json codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns "json".
func (c *JSONCodec) Format() string {
	return FormatJSON
}

// Encode writes the collection. labels and profiles are empty in mix mode.
func (c *JSONCodec) Encode(w io.Writer, coll *entities.ProfileCollection) error {
	t := fromCollection(coll)
	rec := jsonRecord{
		Labels:       t.labels,
		MixtureLabel: t.mixtureLabel,
		XAxis:        t.axis,
		Profiles:     t.columns,
		Mixture:      t.mixture,
		Mode:         t.mode.String(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

// Decode validates the document against the profile schema, then reads it.
// A missing mode is inferred from the presence of individual profiles.
func (c *JSONCodec) Decode(r io.Reader) (*entities.ProfileCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read json: %w", err)
	}

	schema, err := compiledProfileSchema()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.NewSchemaError(FormatJSON, "malformed document", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, apperrors.NewSchemaError(FormatJSON, describeSchemaError(err), nil)
	}

	var rec jsonRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, apperrors.NewSchemaError(FormatJSON, "malformed document", err)
	}

	var mode values.Mode
	if rec.Mode != "" {
		mode, err = values.ParseMode(rec.Mode)
		if err != nil {
			return nil, apperrors.NewSchemaError(FormatJSON, "mode", err)
		}
	}
	label := rec.MixtureLabel
	if label == "" {
		label = "Mixture"
	}
	if rec.Labels == nil {
		rec.Labels = []string{}
	}

	t := table{
		format:       FormatJSON,
		mode:         mode,
		axis:         rec.XAxis,
		labels:       rec.Labels,
		columns:      rec.Profiles,
		mixtureLabel: label,
		mixture:      rec.Mixture,
	}
	return t.collection()
}

// describeSchemaError flattens a schema validation error into one line.
func describeSchemaError(err error) string {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}

	var messages []string
	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if e.Message != "" && len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(verr)

	if len(messages) == 0 {
		return verr.Error()
	}
	return strings.Join(messages, "; ")
}
