package doctransform

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// mappingDTO is the flat, tag-discriminated serialization shape spec §6
// defines for a Mapping description. Constant's "from" is a tree-value
// literal while Direct/Flatten's "from" is a path string, so the DTO
// carries it as interface{} and each direction narrows by tag.
type mappingDTO struct {
	Tag          string      `json:"tag" yaml:"tag"`
	From         interface{} `json:"from,omitempty" yaml:"from,omitempty"`
	To           string      `json:"to,omitempty" yaml:"to,omitempty"`
	Prefix       string      `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Separator    string      `json:"separator,omitempty" yaml:"separator,omitempty"`
	Recursive    bool        `json:"recursive,omitempty" yaml:"recursive,omitempty"`
	Manipulation string      `json:"manipulation,omitempty" yaml:"manipulation,omitempty"`
}

func toMappingDTO(m Mapping) (mappingDTO, error) {
	switch t := m.(type) {
	case DirectMapping:
		return mappingDTO{Tag: "Direct", From: t.From, To: t.To}, nil
	case ConstantMapping:
		return mappingDTO{Tag: "Constant", From: t.From, To: t.To}, nil
	case FlattenMapping:
		return mappingDTO{
			Tag: "Flatten", From: t.From, To: t.To,
			Prefix: t.Prefix, Separator: t.Separator,
			Recursive: t.Recursive, Manipulation: t.Manipulation,
		}, nil
	default:
		return mappingDTO{}, newError(ErrInvalidNamespace, nil, "unknown mapping type %T", m)
	}
}

func fromMappingDTO(dto mappingDTO) (Mapping, error) {
	switch dto.Tag {
	case "Direct":
		from, _ := dto.From.(string)
		return DirectMapping{From: from, To: dto.To}, nil
	case "Constant":
		return ConstantMapping{From: fromInterface(dto.From), To: dto.To}, nil
	case "Flatten":
		from, _ := dto.From.(string)
		return FlattenMapping{
			From: from, To: dto.To,
			Prefix: dto.Prefix, Separator: dto.Separator,
			Recursive: dto.Recursive, Manipulation: dto.Manipulation,
		}, nil
	default:
		return nil, newError(ErrInvalidNamespace, nil, "unknown mapping tag %q", dto.Tag)
	}
}

// SaveMappingsJSON serializes a mapping list to its spec-§6 JSON form.
func SaveMappingsJSON(mappings []Mapping) ([]byte, error) {
	dtos := make([]mappingDTO, len(mappings))
	for i, m := range mappings {
		dto, err := toMappingDTO(m)
		if err != nil {
			return nil, err
		}
		dtos[i] = dto
	}
	b, err := json.Marshal(dtos)
	if err != nil {
		return nil, newError(ErrJSON, err, "encoding mapping list")
	}
	return b, nil
}

// LoadMappingsJSON parses a mapping list from its spec-§6 JSON form.
func LoadMappingsJSON(data []byte) ([]Mapping, error) {
	var dtos []mappingDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, newError(ErrJSON, err, "decoding mapping list")
	}
	return decodeMappings(dtos)
}

// SaveMappingsYAML serializes a mapping list to YAML using the
// teacher's own gopkg.in/yaml.v3 library, satisfying spec §1's
// "storable by a UI" requirement for mapping descriptions.
func SaveMappingsYAML(mappings []Mapping) ([]byte, error) {
	dtos := make([]mappingDTO, len(mappings))
	for i, m := range mappings {
		dto, err := toMappingDTO(m)
		if err != nil {
			return nil, err
		}
		dtos[i] = dto
	}
	b, err := yaml.Marshal(dtos)
	if err != nil {
		return nil, newError(ErrIO, err, "encoding mapping list")
	}
	return b, nil
}

// LoadMappingsYAML parses a mapping list from YAML.
func LoadMappingsYAML(data []byte) ([]Mapping, error) {
	var dtos []mappingDTO
	if err := yaml.Unmarshal(data, &dtos); err != nil {
		return nil, newError(ErrIO, err, "decoding mapping list")
	}
	return decodeMappings(dtos)
}

func decodeMappings(dtos []mappingDTO) ([]Mapping, error) {
	out := make([]Mapping, len(dtos))
	for i, dto := range dtos {
		m, err := fromMappingDTO(dto)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func yamlMarshal(v Value) ([]byte, error) { return yaml.Marshal(v) }

func yamlUnmarshal(data []byte, v *Value) error { return yaml.Unmarshal(data, v) }
