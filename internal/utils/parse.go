package utils

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// DecodeLenient unmarshals data into T. When strict decoding fails (for
// example because the body was cut at the read cap) the payload is repaired
// with jsonrepair and decoded again.
func DecodeLenient[T any](data []byte) (T, error) {
	var result T

	err := json.Unmarshal(data, &result)
	if err == nil {
		return result, nil
	}

	repairedJSON, repairErr := jsonrepair.JSONRepair(string(data))
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
	}

	var repaired T
	if err = json.Unmarshal([]byte(repairedJSON), &repaired); err != nil {
		return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w", result, err)
	}

	return repaired, nil
}
