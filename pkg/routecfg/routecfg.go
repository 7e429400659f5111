// Package routecfg reads router configuration files: the special net
// names, the route layer limit, and the via allow-list that steers via
// selection.  Statements are one per concern and may repeat; the last
// binding of a scalar wins, allow-list entries accumulate.
package routecfg

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Config is the settled configuration after all statements are applied.
type Config struct {
	// Power and Ground name the nets that take the reserved net
	// numbers.  Empty means no net is so designated.
	Power  string
	Ground string

	// MaxLayers caps the number of route layers used.  Zero means no
	// cap beyond what the technology defines.
	MaxLayers int

	// AllowedVias restricts via selection to the named vias when
	// non-empty.
	AllowedVias []string
}

var configLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},

	{Name: "KwPower", Pattern: `(?i)\bpower\b`},
	{Name: "KwGround", Pattern: `(?i)\bground\b`},
	{Name: "KwLayers", Pattern: `(?i)\blayers\b`},
	{Name: "KwVia", Pattern: `(?i)\bvia\b`},
	{Name: "KwAllow", Pattern: `(?i)\ballow\b`},

	{Name: "Int", Pattern: `[0-9]+`},

	// Net and via names may carry bus bits and hierarchy dividers.
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_./\[\]]*`},
})

type configFile struct {
	Statements []*statement `parser:"@@*"`
}

type statement struct {
	Power    *string `parser:"  KwPower @Ident"`
	Ground   *string `parser:"| KwGround @Ident"`
	Layers   *int    `parser:"| KwLayers @Int"`
	ViaAllow *string `parser:"| KwVia KwAllow @Ident"`
}

// Parser reads configuration files.
type Parser struct {
	parser *participle.Parser[configFile]
}

func NewParser() (*Parser, error) {
	parser, err := participle.Build[configFile](
		participle.Lexer(configLexer),
		participle.Elide("Comment", "Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse reads statements from r and applies them in order.
func (p *Parser) Parse(r io.Reader) (*Config, error) {
	file, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return apply(file), nil
}

// ParseString reads statements from a string.
func (p *Parser) ParseString(input string) (*Config, error) {
	file, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return apply(file), nil
}

// ParseFile reads statements from a file path.
func (p *Parser) ParseFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

func apply(file *configFile) *Config {
	cfg := &Config{}
	for _, s := range file.Statements {
		switch {
		case s.Power != nil:
			cfg.Power = *s.Power
		case s.Ground != nil:
			cfg.Ground = *s.Ground
		case s.Layers != nil:
			cfg.MaxLayers = *s.Layers
		case s.ViaAllow != nil:
			cfg.AllowedVias = append(cfg.AllowedVias, *s.ViaAllow)
		}
	}
	return cfg
}

// Parse reads a configuration from r with a fresh parser.
func Parse(r io.Reader) (*Config, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	return p.Parse(r)
}

// ParseFile reads a configuration file with a fresh parser.
func ParseFile(filename string) (*Config, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	return p.ParseFile(filename)
}
