package fs

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/bft-labs/fibcalc/internal/domain"
)

// Format names accepted by CodecFor and the --format flag.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = FormatJSON

// record is the serialized form of a snapshot. Priors are decimal strings
// so values beyond 64 bits survive every format.
type record struct {
	Index  uint64   `json:"index" yaml:"index" toml:"index"`
	Priors []string `json:"priors" yaml:"priors" toml:"priors"`
}

// Codec encodes and decodes snapshot records in one file format.
type Codec interface {
	// Ext is the file extension written after the stamp, without a dot.
	Ext() string
	Encode(p domain.Progress) ([]byte, error)
	Decode(data []byte) (domain.Progress, error)
}

type codec struct {
	ext       string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

func (c codec) Ext() string { return c.ext }

func (c codec) Encode(p domain.Progress) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rec := record{
		Index:  p.Index,
		Priors: []string{p.Prev.String(), p.Current.String()},
	}
	return c.marshal(rec)
}

func (c codec) Decode(data []byte) (domain.Progress, error) {
	var rec record
	if err := c.unmarshal(data, &rec); err != nil {
		return domain.Progress{}, fmt.Errorf("decode %s: %w", c.ext, err)
	}
	if len(rec.Priors) != 2 {
		return domain.Progress{}, fmt.Errorf("%w: want 2 priors, got %d", domain.ErrInvalidProgress, len(rec.Priors))
	}
	prev, ok := new(big.Int).SetString(rec.Priors[0], 10)
	if !ok {
		return domain.Progress{}, fmt.Errorf("%w: bad prior %q", domain.ErrInvalidProgress, rec.Priors[0])
	}
	cur, ok := new(big.Int).SetString(rec.Priors[1], 10)
	if !ok {
		return domain.Progress{}, fmt.Errorf("%w: bad prior %q", domain.ErrInvalidProgress, rec.Priors[1])
	}
	p := domain.Progress{Index: rec.Index, Prev: prev, Current: cur}
	if err := p.Validate(); err != nil {
		return domain.Progress{}, err
	}
	return p, nil
}

var codecs = map[string]Codec{
	FormatJSON: codec{ext: "json", marshal: json.Marshal, unmarshal: json.Unmarshal},
	FormatYAML: codec{ext: "yaml", marshal: yaml.Marshal, unmarshal: yaml.Unmarshal},
	FormatTOML: codec{ext: "toml", marshal: toml.Marshal, unmarshal: toml.Unmarshal},
}

// CodecFor returns the codec registered for a format name or file extension.
func CodecFor(name string) (Codec, bool) {
	if name == "yml" {
		name = FormatYAML
	}
	c, ok := codecs[name]
	return c, ok
}

// Formats lists the supported format names in sorted order.
func Formats() []string {
	out := make([]string, 0, len(codecs))
	for k := range codecs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
