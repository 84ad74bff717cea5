package values

// mergeMaps combines flattened sources into a new map. Keys are already
// flat, so a later source replaces an earlier value key by key.
func mergeMaps(maps ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}
