package parser

import (
	"strings"
	"unicode"
)

// Field is a semantic column of an import sheet.
type Field int

const (
	FieldDate Field = iota
	FieldCalls
	FieldAgents
	FieldAHT
	FieldTalkTime
	FieldSL
)

func (f Field) String() string {
	switch f {
	case FieldDate:
		return "date"
	case FieldCalls:
		return "calls"
	case FieldAgents:
		return "agents"
	case FieldAHT:
		return "aht"
	case FieldTalkTime:
		return "talk_time"
	case FieldSL:
		return "sl"
	default:
		return "unknown"
	}
}

// Keywords matched as substrings of normalized header names. Turkish and
// English spellings are both accepted.
var fieldKeywords = map[Field][]string{
	FieldDate:     {"tarih", "date", "gün", "day"},
	FieldCalls:    {"çağrı", "cagri", "call", "inbound", "vol"},
	FieldAHT:      {"aht", "süre", "time", "handle"},
	FieldAgents:   {"temsilci", "agent", "personel", "kisi"},
	FieldSL:       {"sl", "service", "hizmet", "level", "seviye"},
	FieldTalkTime: {"talk", "görüşme", "konusma"},
}

// resolveOrder decides which field claims a column first. Talk time is
// resolved before AHT because "talk time" also contains "time".
var resolveOrder = []Field{FieldDate, FieldTalkTime, FieldCalls, FieldAgents, FieldSL, FieldAHT}

// ColumnMap maps fields to column indexes in a sheet.
type ColumnMap map[Field]int

// normalizeHeader lowercases a header and strips all whitespace.
func normalizeHeader(h string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(h))
}

// MatchColumns assigns each field the first unclaimed header containing one
// of its keywords. Each column is used at most once.
func MatchColumns(header []string) ColumnMap {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}

	cols := make(ColumnMap)
	claimed := make(map[int]bool)
	for _, field := range resolveOrder {
		for i, h := range normalized {
			if claimed[i] || h == "" {
				continue
			}
			if containsAny(h, fieldKeywords[field]) {
				cols[field] = i
				claimed[i] = true
				break
			}
		}
	}
	return cols
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// value returns the trimmed cell for field, or "" when absent.
func (c ColumnMap) value(field Field, record []string) string {
	i, ok := c[field]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
