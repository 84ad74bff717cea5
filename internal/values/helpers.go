package values

import (
	"sort"
	"strconv"
	"strings"
)

// GenerateVarFlags converts a flat key-value map to bundle CLI --var arguments.
// Each pair becomes two arguments: "--var" and "key=value".
// Keys are returned in sorted order for deterministic output.
func GenerateVarFlags(vars map[string]string) []string {
	if len(vars) == 0 {
		return nil
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	flags := make([]string, 0, len(vars)*2)
	for _, key := range keys {
		flags = append(flags, "--var", key+"="+vars[key])
	}
	return flags
}

// QuoteArgs joins args into a single line, quoting any argument a shell would split.
func QuoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'\\$`") {
			quoted[i] = escapeValue(arg)
			continue
		}
		quoted[i] = arg
	}
	return strings.Join(quoted, " ")
}

// escapeValue escapes a value string for safe use in CLI arguments.
func escapeValue(value string) string {
	return strconv.Quote(value)
}
