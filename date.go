// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cookiejar

// parseCookieDate implements the RFC 6265 section 5.1.1 cookie-date
// grammar. It is deliberately not a general date parser: it tokenizes on a
// fixed delimiter set and tries, for each token, exactly one of four
// categories in a fixed order, filling each category at most once.

import (
	"strconv"
	"time"
)

// isDelim reports whether b is one of the cookie-date delimiters:
// {0x09, 0x20-0x2F, 0x3B-0x40, 0x5B-0x60, 0x7B-0x7E}.
func isDelim(b byte) bool {
	switch {
	case b == 0x09:
		return true
	case b >= 0x20 && b <= 0x2F:
		return true
	case b >= 0x3B && b <= 0x40:
		return true
	case b >= 0x5B && b <= 0x60:
		return true
	case b >= 0x7B && b <= 0x7E:
		return true
	}
	return false
}

func tokenizeCookieDate(s string) []string {
	var tokens []string
	start := -1
	for i := 0; i < len(s); i++ {
		if isDelim(s[i]) {
			if start != -1 {
				tokens = append(tokens, s[start:i])
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// tryTime attempts to parse token as HH:MM:SS with optional trailing
// non-digit characters, per the grammar's time production.
func tryTime(token string) (hh, mm, ss int, ok bool) {
	digits := token
	// strip trailing non-digit garbage as the grammar allows.
	for len(digits) > 0 {
		c := digits[len(digits)-1]
		if c >= '0' && c <= '9' {
			break
		}
		digits = digits[:len(digits)-1]
	}
	parts := splitColon(digits)
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	for _, p := range parts {
		if len(p) < 1 || len(p) > 2 || !isAllDigits(p) {
			return 0, 0, 0, false
		}
	}
	hh, _ = strconv.Atoi(parts[0])
	mm, _ = strconv.Atoi(parts[1])
	ss, _ = strconv.Atoi(parts[2])
	return hh, mm, ss, true
}

func splitColon(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func lowerASCII3(s string) string {
	if len(s) < 3 {
		return ""
	}
	b := []byte{s[0], s[1], s[2]}
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// ParseCookieDate parses s using the RFC 6265 section 5.1.1 cookie-date
// grammar and returns the corresponding UTC instant. It returns ok==false
// if s does not satisfy the grammar (spec section 4.A).
func ParseCookieDate(s string) (t time.Time, ok bool) {
	var haveTime, haveDay, haveMonth, haveYear bool
	var hh, mm, ss, day, month, year int

	for _, tok := range tokenizeCookieDate(s) {
		if !haveTime {
			if h, m, sec, okTime := tryTime(tok); okTime {
				hh, mm, ss = h, m, sec
				haveTime = true
				continue
			}
		}
		if !haveDay {
			if isAllDigits(tok) && len(tok) <= 2 {
				d, _ := strconv.Atoi(tok)
				if d >= 1 && d <= 31 {
					day = d
					haveDay = true
					continue
				}
			}
		}
		if !haveMonth {
			if mo, found := monthNames[lowerASCII3(tok)]; found {
				month = mo
				haveMonth = true
				continue
			}
		}
		if !haveYear {
			if isAllDigits(tok) && (len(tok) == 2 || len(tok) == 4) {
				y, _ := strconv.Atoi(tok)
				if len(tok) == 2 {
					switch {
					case y >= 70 && y <= 99:
						y += 1900
					case y >= 0 && y <= 69:
						y += 2000
					default:
						continue
					}
				}
				year = y
				haveYear = true
				continue
			}
		}
	}

	if !(haveTime && haveDay && haveMonth && haveYear) {
		return time.Time{}, false
	}
	if day < 1 || day > 31 || hh > 23 || mm > 59 || ss > 59 {
		return time.Time{}, false
	}
	if year < 1601 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, hh, mm, ss, 0, time.UTC), true
}
