package adapter

import (
	"strconv"
	"strings"
)

// CountPlaceholders returns the number of distinct parameters referenced by
// query. It understands anonymous "?", numbered "?NNN" and "$NNN", and named
// ":name", "@name" and "$name" parameters. Quoted strings, quoted identifiers
// and comments are skipped. Named parameters count once however often they
// appear; numbered parameters raise the count to their number.
//
// It is used for drivers whose statements report NumInput() == -1.
func CountPlaceholders(query string) int {
	count := 0
	named := map[string]int{}
	scanPlaceholders(query, func(start, end int) {
		tok := query[start:end]
		switch {
		case tok == "?":
			count++
		case isDigit(tok[1]):
			n, _ := strconv.Atoi(tok[1:])
			count = max(count, n)
		default:
			name := tok[1:]
			if _, seen := named[name]; !seen {
				count++
				named[name] = count
			}
		}
	})
	return count
}

// Rebind rewrites every anonymous "?" placeholder of query with
// placeholder(n), n counting from 1. Question marks inside quotes or
// comments are left alone, as are numbered and named parameters.
func Rebind(query string, placeholder func(n int) string) string {
	var b strings.Builder
	last, n := 0, 0
	scanPlaceholders(query, func(start, end int) {
		if end-start != 1 || query[start] != '?' {
			return
		}
		n++
		b.WriteString(query[last:start])
		b.WriteString(placeholder(n))
		last = end
	})
	if n == 0 {
		return query
	}
	b.WriteString(query[last:])
	return b.String()
}

// scanPlaceholders calls fn with the bounds of every parameter token found
// outside quoted text and comments.
func scanPlaceholders(query string, fn func(start, end int)) {
	const (
		sText = iota
		sSQ   // '...'
		sDQ   // "..."
		sBT   // `...`
		sBR   // [...]
		sLC   // -- ...
		sBC   // /* ... */
	)
	state := sText

	for i := 0; i < len(query); {
		c := query[i]
		switch state {
		case sText:
			switch {
			case c == '\'':
				state = sSQ
			case c == '"':
				state = sDQ
			case c == '`':
				state = sBT
			case c == '[':
				state = sBR
			case c == '-' && i+1 < len(query) && query[i+1] == '-':
				state = sLC
				i++
			case c == '/' && i+1 < len(query) && query[i+1] == '*':
				state = sBC
				i++
			case c == '?':
				end := scanDigits(query, i+1)
				fn(i, end)
				i = end
				continue
			case c == '$' && i+1 < len(query) && isDigit(query[i+1]):
				end := scanDigits(query, i+1)
				fn(i, end)
				i = end
				continue
			case (c == ':' || c == '@' || c == '$') && i+1 < len(query) && isIdentStart(query[i+1]):
				if c == ':' && i > 0 && query[i-1] == ':' {
					// Postgres cast, e.g. x::text
					break
				}
				end := scanIdent(query, i+1)
				fn(i, end)
				i = end
				continue
			}
			i++

		case sSQ, sDQ, sBT:
			closer := byte('\'')
			if state == sDQ {
				closer = '"'
			} else if state == sBT {
				closer = '`'
			}
			i++
			if c == closer {
				if i < len(query) && query[i] == closer {
					i++
				} else {
					state = sText
				}
			}

		case sBR:
			i++
			if c == ']' {
				state = sText
			}

		case sLC:
			i++
			if c == '\n' || c == '\r' {
				state = sText
			}

		case sBC:
			i++
			if c == '*' && i < len(query) && query[i] == '/' {
				i++
				state = sText
			}
		}
	}
}

func scanDigits(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func scanIdent(s string, i int) int {
	for i < len(s) && (isIdentStart(s[i]) || isDigit(s[i])) {
		i++
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
