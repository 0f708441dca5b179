// Package confload is a minimal nginx-subset config reader: it turns a
// configuration file into a []*config.ServerConfig, exactly the input
// contract spec.md §6 describes and the core consumes. It is a
// collaborator, not part of the core (spec.md §1 explicitly puts the
// config lexer/parser out of scope).
//
// Block/directive shape (server { ... location /x { ... } }, one
// directive per line terminated by ';') is grounded on
// _examples/original_source/src/ConfigParser.cpp's recursive-descent
// tokenizer, trimmed to exactly the directives SPEC_FULL.md §6 lists.
package confload

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/s00inx/webserv/config"
)

// Load reads and parses the nginx-subset config file at path into a slice
// of ServerConfig, one per "server { ... }" block.
func Load(path string) ([]*config.ServerConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("confload: %w", err)
	}
	defer f.Close()

	toks, err := tokenize(f)
	if err != nil {
		return nil, fmt.Errorf("confload: %w", err)
	}

	p := &parser{toks: toks}
	var servers []*config.ServerConfig
	for p.pos < len(p.toks) {
		if p.next() != "server" {
			return nil, fmt.Errorf("confload:%d: expected 'server', got %q", p.line(), p.toks[p.pos-1].text)
		}
		sc, err := p.parseServer()
		if err != nil {
			return nil, fmt.Errorf("confload: %w", err)
		}
		servers = append(servers, sc)
	}
	if len(servers) == 0 {
		return nil, fmt.Errorf("confload: no server blocks in %s", path)
	}
	return servers, nil
}

// token is one lexical unit: a directive keyword, a value, or one of the
// structural bytes '{', '}', ';'.
type token struct {
	text string
	line int
}

// tokenize splits the file into whitespace-separated tokens, treating
// '{', '}', and ';' as tokens of their own even when glued to a word
// (e.g. "off;"), and dropping '#'-prefixed line comments.
func tokenize(f *os.File) ([]token, error) {
	sc := bufio.NewScanner(f)
	var toks []token
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, word := range strings.Fields(line) {
			toks = append(toks, splitStructural(word, lineNo)...)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return toks, nil
}

// splitStructural pulls trailing/leading '{', '}', ';' off a word into
// their own tokens, so "off;" tokenizes as ["off", ";"].
func splitStructural(word string, line int) []token {
	var out []token
	for len(word) > 0 {
		switch word[0] {
		case '{', '}', ';':
			out = append(out, token{string(word[0]), line})
			word = word[1:]
			continue
		}
		end := len(word)
		for i, b := range []byte(word) {
			if b == '{' || b == '}' || b == ';' {
				end = i
				break
			}
		}
		out = append(out, token{word[:end], line})
		word = word[end:]
	}
	return out
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) next() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	t := p.toks[p.pos].text
	p.pos++
	return t
}

func (p *parser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos].text
}

func (p *parser) line() int {
	if p.pos == 0 || p.pos > len(p.toks) {
		return 0
	}
	return p.toks[p.pos-1].line
}

func (p *parser) expect(text string) error {
	got := p.next()
	if got != text {
		return fmt.Errorf("line %d: expected %q, got %q", p.line(), text, got)
	}
	return nil
}

// untilSemicolon collects value tokens up to (and consuming) the closing
// ';'.
func (p *parser) untilSemicolon() ([]string, error) {
	var vals []string
	for {
		t := p.next()
		if t == "" {
			return nil, fmt.Errorf("line %d: unterminated directive (missing ';')", p.line())
		}
		if t == ";" {
			return vals, nil
		}
		vals = append(vals, t)
	}
}

func (p *parser) parseServer() (*config.ServerConfig, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}

	sc := &config.ServerConfig{
		ErrorPages:  make(map[int]string),
		MaxBodySize: config.DefaultMaxBodySize,
	}

	for p.peek() != "}" {
		directive := p.next()
		if directive == "" {
			return nil, fmt.Errorf("line %d: unterminated server block", p.line())
		}

		switch directive {
		case "listen":
			vals, err := p.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(vals) != 1 {
				return nil, fmt.Errorf("line %d: listen expects one value", p.line())
			}
			host, port, err := parseListen(vals[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", p.line(), err)
			}
			sc.Host, sc.Port = host, port

		case "server_name":
			vals, err := p.untilSemicolon()
			if err != nil {
				return nil, err
			}
			sc.ServerNames = vals

		case "error_page":
			vals, err := p.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(vals) < 2 {
				return nil, fmt.Errorf("line %d: error_page expects a code and a path", p.line())
			}
			path := vals[len(vals)-1]
			for _, c := range vals[:len(vals)-1] {
				code, err := strconv.Atoi(c)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad error_page code %q", p.line(), c)
				}
				sc.ErrorPages[code] = path
			}

		case "client_max_body_size":
			vals, err := p.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(vals) != 1 {
				return nil, fmt.Errorf("line %d: client_max_body_size expects one value", p.line())
			}
			n, err := config.ParseSize(vals[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", p.line(), err)
			}
			sc.MaxBodySize = n

		case "location":
			loc, err := p.parseLocation()
			if err != nil {
				return nil, err
			}
			sc.Locations = append(sc.Locations, loc)

		default:
			if _, err := p.untilSemicolon(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	return sc, nil
}

func (p *parser) parseLocation() (*config.Location, error) {
	path := p.next()
	if path == "" || path[0] != '/' {
		return nil, fmt.Errorf("line %d: location path must start with '/'", p.line())
	}
	if err := p.expect("{"); err != nil {
		return nil, err
	}

	loc := &config.Location{
		Path:          path,
		CGIExtensions: make(map[string]string),
	}

	for p.peek() != "}" {
		directive := p.next()
		if directive == "" {
			return nil, fmt.Errorf("line %d: unterminated location block", p.line())
		}

		switch directive {
		case "methods", "allow_methods":
			vals, err := p.untilSemicolon()
			if err != nil {
				return nil, err
			}
			loc.Methods = vals

		case "root":
			vals, err := p.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(vals) != 1 {
				return nil, fmt.Errorf("line %d: root expects one value", p.line())
			}
			loc.Root = vals[0]

		case "autoindex":
			vals, err := p.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(vals) != 1 {
				return nil, fmt.Errorf("line %d: autoindex expects one value", p.line())
			}
			loc.Autoindex = vals[0] == "on"

		case "index":
			vals, err := p.untilSemicolon()
			if err != nil {
				return nil, err
			}
			loc.IndexFiles = vals

		case "upload_path":
			vals, err := p.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(vals) != 1 {
				return nil, fmt.Errorf("line %d: upload_path expects one value", p.line())
			}
			loc.UploadPath = vals[0]

		case "cgi_extension", "cgi_extensions":
			vals, err := p.untilSemicolon()
			if err != nil {
				return nil, err
			}
			if len(vals) != 2 {
				return nil, fmt.Errorf("line %d: %s expects '.ext interpreter'", p.line(), directive)
			}
			loc.CGIExtensions[vals[0]] = vals[1]

		case "return":
			vals, err := p.untilSemicolon()
			if err != nil {
				return nil, err
			}
			loc.Redirect = strings.Join(vals, " ")

		default:
			if _, err := p.untilSemicolon(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	return loc, nil
}

// parseListen splits an nginx-style "host:port" or bare "port" listen
// value.
func parseListen(v string) (host string, port uint16, err error) {
	if i := strings.LastIndexByte(v, ':'); i >= 0 {
		host = v[:i]
		v = v[i+1:]
	}
	n, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("bad listen port %q", v)
	}
	return host, uint16(n), nil
}
