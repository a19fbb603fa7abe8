package wizard

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
)

// setPath writes value at a dotted path of cfg. The path is resolved against
// the JSON shape of the config, so names match what clients send and see.
func setPath(cfg *models.NetworkConfig, path string, value interface{}) error {
	if value == nil {
		return fmt.Errorf("%w: %s: value is required", ErrInvalidValue, path)
	}
	segments := strings.Split(path, ".")
	for _, s := range segments {
		if s == "" {
			return fmt.Errorf("%w: %q", ErrUnknownField, path)
		}
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return err
	}

	var parent interface{} = tree
	for i, seg := range segments {
		last := i == len(segments)-1
		switch node := parent.(type) {
		case map[string]interface{}:
			current, ok := node[seg]
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnknownField, path)
			}
			if last {
				if !sameKind(current, value) {
					return fmt.Errorf("%w: %s expects %s", ErrInvalidValue, path, kindOf(current))
				}
				node[seg] = value
			} else {
				parent = current
			}
		case []interface{}:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return fmt.Errorf("%w: %q", ErrUnknownField, path)
			}
			if idx < 0 || idx >= len(node) {
				return fmt.Errorf("%w: %s", ErrIndexOutOfRange, path)
			}
			if last {
				if !sameKind(node[idx], value) {
					return fmt.Errorf("%w: %s expects %s", ErrInvalidValue, path, kindOf(node[idx]))
				}
				node[idx] = value
			} else {
				parent = node[idx]
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, path)
		}
	}

	raw, err = json.Marshal(tree)
	if err != nil {
		return err
	}
	var next models.NetworkConfig
	if err := json.Unmarshal(raw, &next); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, path, err)
	}
	if next.Validators.Custom == nil {
		next.Validators.Custom = []models.ValidatorEntry{}
	}
	*cfg = next
	return nil
}

// sliderPattern replaces list indexes with "*" so a path can be looked up in
// the slider table.
func sliderPattern(path string) string {
	segments := strings.Split(path, ".")
	for i, s := range segments {
		if _, err := strconv.Atoi(s); err == nil {
			segments[i] = "*"
		}
	}
	return strings.Join(segments, ".")
}

// sameKind reports whether v can replace current in the JSON tree. A null
// list (an empty Go slice marshals as []) accepts any list.
func sameKind(current, v interface{}) bool {
	if current == nil {
		_, isList := v.([]interface{})
		return isList
	}
	return kindOf(current) == kindOf(v)
}

func kindOf(v interface{}) string {
	switch v.(type) {
	case string:
		return "string"
	case float64, float32, int, int64:
		return "number"
	case bool:
		return "boolean"
	case []interface{}:
		return "list"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
