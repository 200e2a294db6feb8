package preset

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseText decodes the flat text format: one "name = value" pair per line,
// # starts a comment, blank lines are skipped. Two reserved keys carry
// metadata: "name" and "instrument". Malformed lines are skipped so one bad
// entry never aborts a load; Skipped reports how many were dropped.
func ParseText(b []byte) (*Preset, error) {
	p := &Preset{Params: make(map[string]float32)}
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			p.Skipped++
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "name":
			p.Name = value
		case "instrument":
			p.Instrument = value
		default:
			f, err := strconv.ParseFloat(value, 32)
			if err != nil {
				p.Skipped++
				continue
			}
			p.Params[key] = float32(f)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// MarshalText encodes a preset in the flat text format with parameters in
// sorted order, so saved files diff cleanly.
func MarshalText(p *Preset) []byte {
	var buf bytes.Buffer
	if p.Name != "" {
		fmt.Fprintf(&buf, "name = %s\n", p.Name)
	}
	if p.Instrument != "" {
		fmt.Fprintf(&buf, "instrument = %s\n", p.Instrument)
	}
	keys := make([]string, 0, len(p.Params))
	for k := range p.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s = %g\n", k, p.Params[k])
	}
	return buf.Bytes()
}
