package pathutil

import "testing"

func TestSanitize(t *testing.T) {
	cases := []struct {
		uri  string
		want bool
	}{
		{"/", true},
		{"/index.html", true},
		{"/a/b/c", true},
		{"", false},
		{"relative", false},
		{"/../etc/passwd", false},
		{"/a/../b", false},
		{"/a//b", false},
		{"/a\\b", false},
		{"/a\x00b", false},
		{"/a\x01b", false},
		{"/a\tb", true},
	}
	for _, c := range cases {
		if got := Sanitize(c.uri); got != c.want {
			t.Errorf("Sanitize(%q) = %v, want %v", c.uri, got, c.want)
		}
	}
}

func TestDecode(t *testing.T) {
	got, ok := Decode("/a%20b")
	if !ok || got != "/a b" {
		t.Errorf("Decode: got %q, %v", got, ok)
	}
	_, ok = Decode("/a%zz")
	if ok {
		t.Error("Decode: expected malformed escape to fail")
	}
}

func TestMIMEType(t *testing.T) {
	cases := map[string]string{
		"index.html": "text/html",
		"style.css":  "text/css",
		"app.js":     "application/javascript",
		"photo.jpg":  "image/jpeg",
		"noext":      "application/octet-stream",
		".env":       "application/octet-stream",
	}
	for name, want := range cases {
		if got := MIMEType(name); got != want {
			t.Errorf("MIMEType(%q) = %q, want %q", name, got, want)
		}
	}
}
