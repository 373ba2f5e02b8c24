package common

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrInvalidLiteral 無法解析的字面值
var ErrInvalidLiteral = errors.New("invalid literal")

// ParseLiteral 解析 Python 風格的字面值，例如資料集中的 "{'directions': u'Prep\n20 m'}"
//
// 支援 dict、list、tuple、字串（含 u/r/b 前綴、三引號、相鄰字串串接）、整數、浮點數、
// True/False/None。JSON 的 true/false/null 也接受。dict 解析為 *Record。
func ParseLiteral(src string) (interface{}, error) {
	p := &literalParser{src: src}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing data")
	}
	return v, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w at offset %d: %s", ErrInvalidLiteral, p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) value() (interface{}, error) {
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}

	c := p.peek()
	switch {
	case c == '{':
		return p.dict()
	case c == '[':
		return p.sequence('[', ']', p.value)
	case c == '(':
		return p.sequence('(', ')', p.value)
	case c == '\'' || c == '"':
		return p.stringValue()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	}

	if isStringPrefix(p.src[p.pos:]) {
		return p.stringValue()
	}
	return p.keyword()
}

func (p *literalParser) dict() (interface{}, error) {
	p.pos++ // {
	rec := NewRecord()
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return rec, nil
		}

		key, err := p.key()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("expected ':'")
		}
		p.pos++
		p.skipSpace()
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		rec.Set(fmt.Sprint(key), val)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return rec, nil
		default:
			return nil, p.errorf("expected ',' or '}'")
		}
	}
}

// key 解析字典鍵，list 與 dict 不可作為鍵，tuple 內也不可含有它們
func (p *literalParser) key() (interface{}, error) {
	switch p.peek() {
	case '[', '{':
		return nil, p.errorf("unhashable dict key")
	case '(':
		return p.sequence('(', ')', p.key)
	}
	return p.value()
}

func (p *literalParser) sequence(open, close byte, elem func() (interface{}, error)) (interface{}, error) {
	p.pos++ // open
	list := make([]interface{}, 0)
	for {
		p.skipSpace()
		if p.peek() == close {
			p.pos++
			return list, nil
		}

		val, err := elem()
		if err != nil {
			return nil, err
		}
		list = append(list, val)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case close:
			p.pos++
			return list, nil
		default:
			return nil, p.errorf("expected ',' or '%c'", close)
		}
	}
}

// isStringPrefix 判斷是否為 u'..'、r"..."、b'..'、ur'..' 等字串開頭
func isStringPrefix(s string) bool {
	for i := 0; i < len(s) && i < 3; i++ {
		switch s[i] {
		case 'u', 'U', 'r', 'R', 'b', 'B':
			continue
		case '\'', '"':
			return i > 0
		}
		return false
	}
	return false
}

// stringValue 解析一個或多個相鄰的字串字面值並串接
func (p *literalParser) stringValue() (interface{}, error) {
	var sb strings.Builder
	for {
		s, err := p.stringLiteral()
		if err != nil {
			return nil, err
		}
		sb.WriteString(s)

		save := p.pos
		p.skipSpace()
		if c := p.peek(); c == '\'' || c == '"' || isStringPrefix(p.src[p.pos:]) {
			continue
		}
		p.pos = save
		return sb.String(), nil
	}
}

func (p *literalParser) stringLiteral() (string, error) {
	raw := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '\'' || c == '"' {
			break
		}
		if c == 'r' || c == 'R' {
			raw = true
		}
		p.pos++
	}
	if p.pos >= len(p.src) {
		return "", p.errorf("unterminated string")
	}

	quote := p.src[p.pos : p.pos+1]
	if strings.HasPrefix(p.src[p.pos:], strings.Repeat(quote, 3)) {
		quote = strings.Repeat(quote, 3)
	}
	p.pos += len(quote)

	var sb strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errorf("unterminated string")
		}
		if strings.HasPrefix(p.src[p.pos:], quote) {
			p.pos += len(quote)
			return sb.String(), nil
		}

		c := p.src[p.pos]
		if len(quote) == 1 && (c == '\n' || c == '\r') {
			return "", p.errorf("newline in string")
		}
		if c != '\\' {
			sb.WriteByte(c)
			p.pos++
			continue
		}

		if p.pos+1 >= len(p.src) {
			return "", p.errorf("unterminated escape")
		}
		if raw {
			sb.WriteByte(c)
			sb.WriteByte(p.src[p.pos+1])
			p.pos += 2
			continue
		}
		if err := p.escape(&sb); err != nil {
			return "", err
		}
	}
}

// escape 處理反斜線跳脫序列，p.pos 指向反斜線
func (p *literalParser) escape(sb *strings.Builder) error {
	e := p.src[p.pos+1]
	p.pos += 2

	switch e {
	case '\n':
		// 行接續
	case '\\', '\'', '"':
		sb.WriteByte(e)
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'a':
		sb.WriteByte('\a')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case 'x':
		return p.hexEscape(sb, 2)
	case 'u':
		return p.hexEscape(sb, 4)
	case 'U':
		return p.hexEscape(sb, 8)
	case '0', '1', '2', '3', '4', '5', '6', '7':
		start := p.pos - 1
		end := start + 1
		for end < len(p.src) && end < start+3 && p.src[end] >= '0' && p.src[end] <= '7' {
			end++
		}
		n, _ := strconv.ParseUint(p.src[start:end], 8, 32)
		sb.WriteRune(rune(n))
		p.pos = end
	default:
		// 未知跳脫保留原樣
		sb.WriteByte('\\')
		sb.WriteByte(e)
	}
	return nil
}

func (p *literalParser) hexEscape(sb *strings.Builder, digits int) error {
	if p.pos+digits > len(p.src) {
		return p.errorf("truncated escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+digits], 16, 32)
	if err != nil {
		return p.errorf("invalid hex escape")
	}
	r := rune(n)
	if !utf8.ValidRune(r) {
		r = utf8.RuneError
	}
	sb.WriteRune(r)
	p.pos += digits
	return nil
}

func (p *literalParser) number() (interface{}, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	isFloat := false
scan:
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c >= '0' && c <= '9', c == '_':
		case c == '.' || c == 'e' || c == 'E':
			isFloat = true
		case (c == '-' || c == '+') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E'):
		default:
			break scan
		}
		p.pos++
	}

	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if !isFloat {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.errorf("invalid number %q", text)
	}
	return f, nil
}

func (p *literalParser) keyword() (interface{}, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_') {
			break
		}
		p.pos++
	}
	switch p.src[start:p.pos] {
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	case "None", "null":
		return nil, nil
	}
	p.pos = start
	return nil, p.errorf("unexpected token")
}
