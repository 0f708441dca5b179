package config

import "testing"

func TestParseSize(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"100", 100, false},
		{"1k", 1024, false},
		{"1K", 1024, false},
		{"2m", 2 * 1024 * 1024, false},
		{"1g", 1 << 30, false},
		{"", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
	}
	for _, c := range cases {
		got, err := ParseSize(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseSize(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSize(%q): unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseSize(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFindLocationLongestPrefix(t *testing.T) {
	root := &Location{Path: "/"}
	api := &Location{Path: "/api"}
	apiV1 := &Location{Path: "/api/v1"}
	sc := &ServerConfig{Locations: []*Location{root, api, apiV1}}

	cases := []struct {
		uri  string
		want *Location
	}{
		{"/", root},
		{"/other", root},
		{"/api", api},
		{"/apixyz", root}, // not a prefix match: needs "/" boundary
		{"/api/v1", apiV1},
		{"/api/v1/thing", apiV1},
		{"/api/v2", api},
	}
	for _, c := range cases {
		got := sc.FindLocation(c.uri)
		if got != c.want {
			t.Errorf("FindLocation(%q) = %+v, want %+v", c.uri, got, c.want)
		}
	}
}

func TestAllowsMethodAndAllowHeader(t *testing.T) {
	loc := &Location{Methods: []string{"GET", "POST"}}
	if !loc.AllowsMethod("GET") || !loc.AllowsMethod("HEAD") || !loc.AllowsMethod("POST") {
		t.Error("expected GET, HEAD, POST to be allowed")
	}
	if loc.AllowsMethod("DELETE") {
		t.Error("expected DELETE to be disallowed")
	}
	if got := loc.AllowHeader(); got != "GET, HEAD, POST" {
		t.Errorf("AllowHeader() = %q", got)
	}
}

func TestEffectiveMaxBodySize(t *testing.T) {
	sc := &ServerConfig{}
	if sc.EffectiveMaxBodySize() != DefaultMaxBodySize {
		t.Error("expected default max body size")
	}
	sc.MaxBodySize = 500
	if sc.EffectiveMaxBodySize() != 500 {
		t.Error("expected configured max body size")
	}
}
