package validate

import (
	"encoding/json"
	"fmt"
)

// DataJSON validates data.json: an array of exactly the five ExpectedData strings, in order.
func DataJSON(path string) error {
	data, err := readNonEmpty(path)
	if err != nil {
		return err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fail(path, CheckValidJSON, "invalid JSON syntax", err)
	}

	items, ok := doc.([]interface{})
	if !ok {
		return fail(path, CheckRootList, fmt.Sprintf("data.json should contain a list at root level, got %T", doc), nil)
	}
	if len(items) != len(ExpectedData) {
		return fail(path, CheckLength, fmt.Sprintf("data.json should contain exactly %d elements, got %d", len(ExpectedData), len(items)), nil)
	}
	for i, item := range items {
		if _, ok := item.(string); !ok {
			return fail(path, CheckAllStrings, fmt.Sprintf("element %d is %T: %v", i, item, item), nil)
		}
	}
	for i, item := range items {
		if item != ExpectedData[i] {
			return fail(path, CheckContent, fmt.Sprintf("element %d is %q, want %q", i, item, ExpectedData[i]), nil)
		}
	}
	return nil
}
