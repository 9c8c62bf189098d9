// Package config reads post-processor settings from Klipper-style
// `[section]` / `key: value` files or from YAML, with per-option access
// tracking so that misspelled options can be reported.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Config is an ordered collection of sections.
type Config struct {
	sections map[string]*Section
	order    []string

	accessedSections map[string]struct{}
}

// New creates a new empty Config.
func New() *Config {
	return &Config{
		sections:         make(map[string]*Section),
		accessedSections: make(map[string]struct{}),
	}
}

// Load reads a configuration file. Files ending in .yaml or .yml are parsed
// as YAML; everything else uses the cfg syntax, which supports
// [include path] directives relative to the including file.
func Load(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: unable to open %s: %w", path, err)
		}
		return LoadYAML(data)
	}
	c := New()
	if err := c.parseFile(path, make(map[string]bool)); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadString parses cfg syntax from a string. Include directives are rejected.
func LoadString(data string) (*Config, error) {
	c := New()
	p := &parser{cfg: c, name: "<string>"}
	if err := p.run(strings.NewReader(data)); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) parseFile(path string, visited map[string]bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: invalid path %s: %w", path, err)
	}
	if visited[abs] {
		return fmt.Errorf("config: recursive include: %s", path)
	}
	visited[abs] = true
	defer func() { visited[abs] = false }()

	f, err := os.Open(abs)
	if err != nil {
		return fmt.Errorf("config: unable to open %s: %w", path, err)
	}
	defer f.Close()

	p := &parser{cfg: c, name: path}
	p.include = func(pattern string) error {
		glob := filepath.Join(filepath.Dir(abs), pattern)
		matches, err := filepath.Glob(glob)
		if err != nil {
			return fmt.Errorf("config: invalid include pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		if len(matches) == 0 && !strings.ContainsAny(glob, "*?[") {
			return fmt.Errorf("config: include file does not exist: %s", glob)
		}
		for _, m := range matches {
			if err := c.parseFile(m, visited); err != nil {
				return err
			}
		}
		return nil
	}
	return p.run(f)
}

// parser holds the state of one cfg-syntax source.
type parser struct {
	cfg     *Config
	name    string
	include func(pattern string) error

	section string
	options map[string]string
}

func (p *parser) flush() {
	if p.section != "" {
		p.cfg.addSection(p.section, p.options)
	}
	p.section = ""
	p.options = nil
}

func (p *parser) run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if idx := strings.IndexAny(line, "#;"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			p.flush()
			header := strings.TrimSpace(line[1 : len(line)-1])
			if header == "" {
				return fmt.Errorf("config: empty section header at line %d in %s", lineNum, p.name)
			}
			if pattern, ok := strings.CutPrefix(header, "include "); ok {
				pattern = strings.TrimSpace(pattern)
				if pattern == "" || p.include == nil {
					return fmt.Errorf("config: unsupported include at line %d in %s", lineNum, p.name)
				}
				if err := p.include(pattern); err != nil {
					return err
				}
				continue
			}
			p.section = header
			p.options = make(map[string]string)
			continue
		}

		// Options before the first section are ignored
		if p.section == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			key, value, ok = strings.Cut(line, "=")
		}
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("config: expected 'key: value' at line %d in %s", lineNum, p.name)
		}
		p.options[key] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("config: error reading %s: %w", p.name, err)
	}
	p.flush()
	return nil
}

// addSection adds a section, merging options into an existing one.
func (c *Config) addSection(name string, options map[string]string) {
	if existing, ok := c.sections[name]; ok {
		for k, v := range options {
			existing.Set(k, v)
		}
		return
	}
	c.sections[name] = newSection(name, options)
	c.order = append(c.order, name)
}

// GetSection returns a Section by name, or error if not found.
func (c *Config) GetSection(name string) (*Section, error) {
	sec, ok := c.sections[name]
	if !ok {
		return nil, ErrMissingSection(name)
	}
	c.accessedSections[name] = struct{}{}
	return sec, nil
}

// GetSectionOptional returns a Section if it exists, or nil if not.
func (c *Config) GetSectionOptional(name string) *Section {
	sec, ok := c.sections[name]
	if ok {
		c.accessedSections[name] = struct{}{}
	}
	return sec
}

// EnsureSection returns the named section, creating an empty one if needed.
func (c *Config) EnsureSection(name string) *Section {
	if _, ok := c.sections[name]; !ok {
		c.addSection(name, nil)
	}
	return c.GetSectionOptional(name)
}

// HasSection checks if a section exists.
func (c *Config) HasSection(name string) bool {
	_, ok := c.sections[name]
	return ok
}

// GetSectionNames returns all section names in order.
func (c *Config) GetSectionNames() []string {
	result := make([]string, len(c.order))
	copy(result, c.order)
	return result
}

// GetUnusedSections returns the sorted names of sections never accessed.
func (c *Config) GetUnusedSections() []string {
	var result []string
	for name := range c.sections {
		if _, ok := c.accessedSections[name]; !ok {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}

// CheckUnusedOptions returns an error naming every option that was never read.
func (c *Config) CheckUnusedOptions() error {
	var problems []string
	for _, name := range c.order {
		if unused := c.sections[name].GetUnusedOptions(); len(unused) > 0 {
			problems = append(problems, fmt.Sprintf("[%s]: unused options %v", name, unused))
		}
	}
	if len(problems) > 0 {
		return NewConfigError("", "", strings.Join(problems, "; "))
	}
	return nil
}
