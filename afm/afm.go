// Package afm parses Adobe Font Metrics files (component K): ASCII,
// line-oriented font-metrics data giving per-glyph advance widths and a
// handful of overall font metrics, used to size and position text drawn
// with a simple (non-embedded) Type1 font.
package afm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CharMetric is one glyph's entry from the StartCharMetrics block.
type CharMetric struct {
	Code  int // -1 if the font has no intrinsic code for this glyph
	Name  string
	Width float64
}

// Metrics is the parsed contents of one AFM file.
type Metrics struct {
	FontName     string
	FamilyName   string
	Ascender     float64
	Descender    float64
	CapHeight    float64
	XHeight      float64
	StemV        float64
	StemH        float64
	AvgWidth     float64
	MaxWidth     float64
	MissingWidth float64

	FirstChar int
	LastChar  int

	byCode int
	byName map[string]CharMetric
	byInt  map[int]CharMetric
}

// ByName looks up a glyph's metric by its Adobe glyph name.
func (m *Metrics) ByName(name string) (CharMetric, bool) {
	cm, ok := m.byName[name]
	return cm, ok
}

// ByCode looks up a glyph's metric by the font's own intrinsic encoding
// (the AFM file's "C" field), when it has one.
func (m *Metrics) ByCode(code int) (CharMetric, bool) {
	cm, ok := m.byInt[code]
	return cm, ok
}

// Parse reads one AFM file (4.K): it scans line by line for
// StartFontMetrics/EndFontMetrics bounds, the scalar header keys, and
// the StartCharMetrics/EndCharMetrics block. Each char-metrics line is a
// ";"-separated record; unrecognized fields (L, B, ...) are ignored.
func Parse(r io.Reader) (*Metrics, error) {
	m := &Metrics{byName: make(map[string]CharMetric), byInt: make(map[int]CharMetric)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)

	sawStart := false
	sawEnd := false
	inCharMetrics := false
	firstChar, lastChar := 0, -1
	sawCode := false
	var widthSum float64
	var widthCount int

	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "StartFontMetrics"):
			sawStart = true
			continue
		case strings.HasPrefix(line, "EndFontMetrics"):
			sawEnd = true
			continue
		case strings.HasPrefix(line, "StartCharMetrics"):
			inCharMetrics = true
			continue
		case strings.HasPrefix(line, "EndCharMetrics"):
			inCharMetrics = false
			continue
		}

		if inCharMetrics {
			cm, ok := parseCharMetricsLine(line)
			if !ok {
				continue
			}
			m.byName[cm.Name] = cm
			if cm.Code >= 0 {
				m.byInt[cm.Code] = cm
				if !sawCode || cm.Code < firstChar {
					firstChar = cm.Code
				}
				if !sawCode || cm.Code > lastChar {
					lastChar = cm.Code
				}
				sawCode = true
			}
			if cm.Width > 0 {
				widthSum += cm.Width
				widthCount++
				if cm.Width > m.MaxWidth {
					m.MaxWidth = cm.Width
				}
			}
			continue
		}

		key, val, ok := splitHeaderLine(line)
		if !ok {
			continue
		}
		switch key {
		case "FontName":
			m.FontName = val
		case "FamilyName":
			m.FamilyName = val
		case "Ascender":
			m.Ascender = parseFloat(val)
		case "Descender":
			m.Descender = parseFloat(val)
		case "CapHeight":
			m.CapHeight = parseFloat(val)
		case "XHeight":
			m.XHeight = parseFloat(val)
		case "StemV":
			m.StemV = parseFloat(val)
		case "StemH":
			m.StemH = parseFloat(val)
		case "MissingWidth":
			m.MissingWidth = parseFloat(val)
		case "MaxWidth":
			m.MaxWidth = parseFloat(val)
		case "AvgWidth":
			m.AvgWidth = parseFloat(val)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !sawStart || !sawEnd {
		return nil, fmt.Errorf("afm: missing StartFontMetrics/EndFontMetrics bounds")
	}

	m.FirstChar = firstChar
	if lastChar >= 0 {
		m.LastChar = lastChar
	}
	if m.AvgWidth == 0 && widthCount > 0 {
		m.AvgWidth = widthSum / float64(widthCount)
	}

	return m, nil
}

func parseCharMetricsLine(line string) (CharMetric, bool) {
	cm := CharMetric{Code: -1}
	found := false
	for _, field := range strings.Split(line, ";") {
		parts := strings.Fields(field)
		if len(parts) < 2 {
			continue
		}
		switch parts[0] {
		case "C":
			if n, err := strconv.Atoi(parts[1]); err == nil {
				cm.Code = n
				found = true
			}
		case "CH":
			hex := strings.Trim(parts[1], "<>")
			if n, err := strconv.ParseInt(hex, 16, 32); err == nil {
				cm.Code = int(n)
				found = true
			}
		case "WX":
			if f, err := strconv.ParseFloat(parts[1], 64); err == nil {
				cm.Width = f
				found = true
			}
		case "N":
			cm.Name = parts[1]
			found = true
		}
	}
	return cm, found && cm.Name != ""
}

func splitHeaderLine(line string) (key, value string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[0], strings.Join(fields[1:], " "), true
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
