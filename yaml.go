package fhirview

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/fhirview/node"
)

// ParseYAML decodes the first YAML document in data into a Node. Mapping
// order is preserved and scalars are resolved by their YAML tag; timestamps
// stay strings so FHIR date and dateTime values are read unchanged.
func ParseYAML(data []byte) (*node.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, AppendIssues(nil, Issue{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err})
	}
	if doc.Kind == 0 {
		return nil, singleIssue(CodeParseError, "empty yaml document")
	}
	n, err := fromYAML(&doc, Root())
	if err != nil {
		return nil, err
	}
	return n, nil
}

func fromYAML(y *yaml.Node, at PathRef) (*node.Node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return node.Null(), nil
		}
		return fromYAML(y.Content[0], at)
	case yaml.AliasNode:
		return fromYAML(y.Alias, at)
	case yaml.SequenceNode:
		items := make([]*node.Node, 0, len(y.Content))
		for i, c := range y.Content {
			v, err := fromYAML(c, at.Index(i))
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return node.Array(items...), nil
	case yaml.MappingNode:
		members := make([]node.Member, 0, len(y.Content)/2)
		for i := 0; i+1 < len(y.Content); i += 2 {
			k := y.Content[i]
			if k.Kind != yaml.ScalarNode || k.ShortTag() != "!!str" {
				return nil, yamlIssue(at, k, "mapping keys must be strings")
			}
			v, err := fromYAML(y.Content[i+1], at.Field(k.Value))
			if err != nil {
				return nil, err
			}
			members = append(members, node.M(k.Value, v))
		}
		return node.Object(members...), nil
	case yaml.ScalarNode:
		return yamlScalar(y, at)
	}
	return nil, yamlIssue(at, y, "unsupported yaml node")
}

func yamlScalar(y *yaml.Node, at PathRef) (*node.Node, error) {
	switch y.ShortTag() {
	case "!!null":
		return node.Null(), nil
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return nil, yamlIssue(at, y, err.Error())
		}
		return node.Bool(b), nil
	case "!!int":
		if gojson.Valid([]byte(y.Value)) {
			return node.Number(json.Number(y.Value)), nil
		}
		i, err := strconv.ParseInt(strings.ReplaceAll(y.Value, "_", ""), 0, 64)
		if err != nil {
			return nil, yamlIssue(at, y, err.Error())
		}
		return node.Int(i), nil
	case "!!float":
		if gojson.Valid([]byte(y.Value)) {
			return node.Number(json.Number(y.Value)), nil
		}
		var f float64
		if err := y.Decode(&f); err != nil {
			return nil, yamlIssue(at, y, err.Error())
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, yamlIssue(at, y, "NaN and Inf have no JSON form")
		}
		return node.Float(f), nil
	default:
		return node.String(y.Value), nil
	}
}

func yamlIssue(at PathRef, y *yaml.Node, msg string) Issues {
	return AppendIssues(nil, Issue{
		Path:    at.Pointer(),
		Code:    CodeParseError,
		Message: fmt.Sprintf("yaml line %d: %s", y.Line, msg),
	})
}
