package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"maps": map[string]any{
			"baseUrl": "",
			"apiKey":  "",
		},
		"crimeData": map[string]any{
			"appToken": "",
		},
		"generation": map[string]any{
			"distanceTolerance": 0.3,
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "MAPS_APIKEY", want: "maps.apiKey"},
		{envKey: "MAPS_BASEURL", want: "maps.baseUrl"},
		{envKey: "CRIMEDATA_APPTOKEN", want: "crimeData.appToken"},
		{envKey: "GENERATION_DISTANCETOLERANCE", want: "generation.distanceTolerance"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}
