package generator

import (
	"github.com/kaptinlin/jsonrepair"
)

// Repair rewrites almost-JSON model output into valid JSON. It handles the
// usual LLM defects: truncated output, trailing or missing commas, single
// quotes, unquoted keys, comments, smart quotes and Python constants
// (True, False, None). The result still has to be decoded by the caller.
func Repair(s string) (string, error) {
	return jsonrepair.JSONRepair(s)
}
