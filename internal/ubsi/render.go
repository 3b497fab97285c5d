package ubsi

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderUnitLine formats a closed unit as the synthetic record the
// Dispatcher injects at unit-close points (spec.md §4.5.5, §6.3).
func RenderUnitLine(c *ClosedUnit) []byte {
	var sb strings.Builder
	for _, w := range c.Linked {
		sb.WriteString(strconv.Itoa(w.Tid))
		sb.WriteByte('-')
		sb.WriteString(strconv.Itoa(w.UnitID))
		sb.WriteByte(',')
	}
	return []byte(fmt.Sprintf("type=UNIT list=%q tid=%d\n", sb.String(), c.Tid))
}

// AnnotateLine appends " unitid=<N>" to a SYSCALL line, replicating the
// reference implementation's in-place annotation of only the SYSCALL line
// of a record (spec.md §4.5.6 step 1).
func AnnotateLine(line []byte, unitID int) []byte {
	out := make([]byte, 0, len(line)+16)
	out = append(out, line...)
	out = append(out, []byte(fmt.Sprintf(" unitid=%d", unitID))...)
	return out
}
