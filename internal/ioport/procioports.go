// internal/ioport/procioports.go
package ioport

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

type portRange struct {
	start, end uint32 // inclusive
	depth      int
}

// parseIOPorts reads /proc/ioports-format text: "0290-0297 : pnp 00:04",
// children indented two spaces under their parent. Lines that do not parse
// are skipped.
func parseIOPorts(r io.Reader) []portRange {
	var out []portRange
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		raw := sc.Text()
		line := strings.TrimLeft(raw, " ")
		depth := len(raw) - len(line)
		dash := strings.IndexByte(line, '-')
		colon := strings.IndexByte(line, ':')
		if dash < 0 || colon < dash {
			continue
		}
		start, err1 := strconv.ParseUint(strings.TrimSpace(line[:dash]), 16, 32)
		end, err2 := strconv.ParseUint(strings.TrimSpace(line[dash+1:colon]), 16, 32)
		if err1 != nil || err2 != nil || end < start {
			continue
		}
		out = append(out, portRange{start: uint32(start), end: uint32(end), depth: depth})
	}
	return out
}

// leaves filters a parsed listing down to entries with no children. Bus
// windows ("PCI Bus 0000:00") span everything below them; only the leaf
// entries are actual driver claims.
func leaves(ranges []portRange) []portRange {
	var out []portRange
	for i, pr := range ranges {
		if i+1 < len(ranges) && ranges[i+1].depth > pr.depth {
			continue
		}
		out = append(out, pr)
	}
	return out
}

// ProcProbe returns a SystemProbe over the platform's port reservation
// listing at path, or /proc/ioports when path is empty. An unreadable
// listing reports nothing busy.
func ProcProbe(path string) func(base, n uint16) bool {
	if path == "" {
		path = "/proc/ioports"
	}
	return func(base, n uint16) bool {
		f, err := os.Open(path)
		if err != nil {
			return false
		}
		defer f.Close()
		lo, hi := uint32(base), uint32(base)+uint32(n)-1
		for _, pr := range leaves(parseIOPorts(f)) {
			if lo <= pr.end && pr.start <= hi {
				return true
			}
		}
		return false
	}
}
