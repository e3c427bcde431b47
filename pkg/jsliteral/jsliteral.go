// Package jsliteral parses the restricted grammar of object literals that
// framework hydration scripts embed in HTML pages. It covers object/array
// literals, single/double/backtick strings, numbers (including hex and
// exponents), booleans, null, undefined, and the handful of expression forms
// bundlers emit (!0, !1, void 0, call expressions). Page content is never
// executed; anything outside the grammar fails that candidate only.
package jsliteral

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// Parse evaluates a JS literal expression into Go values: map[string]any,
// []any, string, float64, bool, or nil.
func Parse(src string) (any, error) {
	p := &parser{src: src}
	p.skipWhitespace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected trailing content at offset %d", p.pos)
	}
	return v, nil
}

// CaptureObject returns the balanced brace-delimited substring starting at
// the first '{' at or after from, respecting string literals and escapes.
func CaptureObject(src string, from int) (string, error) {
	if from < 0 || from >= len(src) {
		return "", fmt.Errorf("capture start %d out of range", from)
	}
	start := strings.IndexByte(src[from:], '{')
	if start < 0 {
		return "", fmt.Errorf("no object literal found after offset %d", from)
	}
	start += from

	depth := 0
	i := start
	for i < len(src) {
		c := src[i]
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[start : i+1], nil
			}
		case '"', '\'', '`':
			end, err := skipString(src, i)
			if err != nil {
				return "", err
			}
			i = end
			continue
		}
		i++
	}
	return "", fmt.Errorf("unbalanced object literal starting at offset %d", start)
}

// skipString returns the index just past the string literal opening at i.
func skipString(src string, i int) (int, error) {
	quote := src[i]
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1, nil
		}
		i++
	}
	return 0, fmt.Errorf("unterminated string literal")
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		// Line comments inside hydration payloads are rare but legal.
		if c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '/' {
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		break
	}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) parseValue() (any, error) {
	p.skipWhitespace()
	c, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of input")
	}

	switch {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"' || c == '\'' || c == '`':
		return p.parseString()
	case c == '!':
		return p.parseNegation()
	case c == '-' || c == '+' || c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	default:
		return p.parseIdentifierExpr()
	}
}

func (p *parser) parseObject() (map[string]any, error) {
	p.pos++ // consume '{'
	obj := map[string]any{}

	for {
		p.skipWhitespace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated object literal")
		}
		if c == '}' {
			p.pos++
			return obj, nil
		}
		if c == ',' {
			// trailing or repeated commas are tolerated
			p.pos++
			continue
		}

		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}

		p.skipWhitespace()
		c, ok = p.peek()
		if !ok || c != ':' {
			return nil, p.errorf("expected ':' after object key %q", key)
		}
		p.pos++

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj[key] = value
	}
}

func (p *parser) parseKey() (string, error) {
	c, _ := p.peek()
	if c == '"' || c == '\'' || c == '`' {
		return p.parseString()
	}
	// unquoted key: identifier or number
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", p.errorf("invalid object key at offset %d", start)
	}
	return p.src[start:p.pos], nil
}

func (p *parser) parseArray() ([]any, error) {
	p.pos++ // consume '['
	arr := []any{}

	for {
		p.skipWhitespace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated array literal")
		}
		if c == ']' {
			p.pos++
			return arr, nil
		}
		if c == ',' {
			p.pos++
			continue
		}

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
}

func (p *parser) parseString() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var sb strings.Builder

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == quote {
			p.pos++
			return sb.String(), nil
		}
		if c != '\\' {
			sb.WriteByte(c)
			p.pos++
			continue
		}

		// escape sequence
		p.pos++
		if p.pos >= len(p.src) {
			return "", p.errorf("unterminated escape sequence")
		}
		e := p.src[p.pos]
		p.pos++
		switch e {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case '0':
			sb.WriteByte(0)
		case 'x':
			if p.pos+2 > len(p.src) {
				return "", p.errorf("truncated \\x escape")
			}
			n, err := strconv.ParseUint(p.src[p.pos:p.pos+2], 16, 8)
			if err != nil {
				return "", p.errorf("invalid \\x escape: %v", err)
			}
			sb.WriteRune(rune(n))
			p.pos += 2
		case 'u':
			r, err := p.parseUnicodeEscape()
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
		default:
			// \\ \" \' \` \/ and anything else escape to the literal char
			sb.WriteByte(e)
		}
	}
	return "", p.errorf("unterminated string literal")
}

func (p *parser) parseUnicodeEscape() (rune, error) {
	if p.pos+4 > len(p.src) {
		return 0, p.errorf("truncated \\u escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
	if err != nil {
		return 0, p.errorf("invalid \\u escape: %v", err)
	}
	p.pos += 4
	r := rune(n)

	// surrogate pair
	if utf16.IsSurrogate(r) && p.pos+6 <= len(p.src) && p.src[p.pos] == '\\' && p.src[p.pos+1] == 'u' {
		n2, err := strconv.ParseUint(p.src[p.pos+2:p.pos+6], 16, 32)
		if err == nil {
			if combined := utf16.DecodeRune(r, rune(n2)); combined != unicode.ReplacementChar {
				p.pos += 6
				return combined, nil
			}
		}
	}
	return r, nil
}

func (p *parser) parseNumber() (any, error) {
	start := p.pos
	if c, _ := p.peek(); c == '-' || c == '+' {
		p.pos++
	}

	// hex
	if p.pos+1 < len(p.src) && p.src[p.pos] == '0' && (p.src[p.pos+1] == 'x' || p.src[p.pos+1] == 'X') {
		p.pos += 2
		hexStart := p.pos
		for p.pos < len(p.src) && isHexDigit(p.src[p.pos]) {
			p.pos++
		}
		if p.pos == hexStart {
			return nil, p.errorf("invalid hex literal at offset %d", start)
		}
		n, err := strconv.ParseUint(p.src[hexStart:p.pos], 16, 64)
		if err != nil {
			return nil, p.errorf("invalid hex literal: %v", err)
		}
		v := float64(n)
		if p.src[start] == '-' {
			v = -v
		}
		return v, nil
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= '0' && c <= '9' || c == '.' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		if (c == '-' || c == '+') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E') {
			p.pos++
			continue
		}
		break
	}

	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return nil, p.errorf("invalid number literal %q", p.src[start:p.pos])
	}
	return v, nil
}

// parseNegation handles the !0 / !1 forms minifiers emit for true / false.
func (p *parser) parseNegation() (any, error) {
	p.pos++ // consume '!'
	c, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of input after '!'")
	}
	switch c {
	case '0':
		p.pos++
		return true, nil
	case '1':
		p.pos++
		return false, nil
	}
	return nil, p.errorf("unsupported negation at offset %d", p.pos)
}

// parseIdentifierExpr handles keyword values and the call-expression forms
// hydration payloads embed (e.g. deferred-promise placeholders). Calls are
// parsed for balance and discarded as null; their results are runtime-only.
func (p *parser) parseIdentifierExpr() (any, error) {
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' || r == '.' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return nil, p.errorf("unexpected character %q at offset %d", p.src[p.pos], p.pos)
	}

	ident := p.src[start:p.pos]
	switch ident {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null", "undefined", "NaN", "Infinity":
		return nil, nil
	case "void":
		// void <expr> evaluates to undefined; consume the operand
		p.skipWhitespace()
		if _, err := p.parseValue(); err != nil {
			return nil, err
		}
		return nil, nil
	case "new":
		// new Ident(args) — parse the constructor expression and discard
		p.skipWhitespace()
		return p.parseIdentifierExpr()
	}

	p.skipWhitespace()
	if c, ok := p.peek(); ok && c == '(' {
		if err := p.skipCall(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return nil, p.errorf("unsupported identifier %q at offset %d", ident, start)
}

// skipCall consumes a balanced parenthesized argument list, respecting
// nested brackets and string literals.
func (p *parser) skipCall() error {
	depth := 0
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				p.pos++
				return nil
			}
		case '"', '\'', '`':
			end, err := skipString(p.src, p.pos)
			if err != nil {
				return err
			}
			p.pos = end
			continue
		case '\\':
			p.pos++
		}
		p.pos++
	}
	return p.errorf("unterminated call expression")
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
