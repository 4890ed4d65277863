package matching

import (
	"strings"

	"github.com/spigell/gigmatch/internal/jobs"
)

type dayKey struct {
	key   string
	index int
}

// dayKeys are matched as substrings in this order.
var dayKeys = []dayKey{
	{"월", 0}, {"화", 1}, {"수", 2}, {"목", 3}, {"금", 4}, {"토", 5}, {"일", 6},
	{"mon", 0}, {"tue", 1}, {"wed", 2}, {"thu", 3}, {"fri", 4}, {"sat", 5}, {"sun", 6},
}

// Slot is an hour range [Start, End).
type Slot struct {
	Start, End int
}

type slotKey struct {
	keys []string
	slot Slot
}

// slotKeys are matched as substrings in this order; the first hit wins.
var slotKeys = []slotKey{
	{[]string{"오전", "morning"}, Slot{6, 12}},
	{[]string{"오후", "afternoon"}, Slot{12, 18}},
	{[]string{"저녁", "야간", "evening", "night"}, Slot{18, 24}},
}

// DayIndex maps a day name to its bitmask position. Only the first word is
// read, so "월요일 오전" is Monday and "월요일오전" too.
func DayIndex(day string) (int, bool) {
	fields := strings.Fields(strings.ToLower(day))
	if len(fields) == 0 {
		return 0, false
	}
	word := strings.ReplaceAll(fields[0], "요일", "")
	for _, d := range dayKeys {
		if strings.Contains(word, d.key) {
			return d.index, true
		}
	}
	return 0, false
}

// SlotFor resolves a time slot name such as "평일 오전".
func SlotFor(name string) (Slot, bool) {
	name = strings.ToLower(name)
	for _, s := range slotKeys {
		for _, key := range s.keys {
			if strings.Contains(name, key) {
				return s.slot, true
			}
		}
	}
	return Slot{}, false
}

// Overlaps reports whether [start, end) intersects the slot. Ranges that
// cross midnight are also tested one day earlier.
func (s Slot) Overlaps(start, end int) bool {
	if start < s.End && end > s.Start {
		return true
	}
	return end > 24 && start-24 < s.End && end-24 > s.Start
}

// TimeSlotMatch reports whether the posting hours overlap any requested slot.
func TimeSlotMatch(p *jobs.Posting, names []string) bool {
	start, end, ok := p.Hours()
	if !ok {
		return false
	}
	for _, name := range names {
		if slot, ok := SlotFor(name); ok && slot.Overlaps(start, end) {
			return true
		}
	}
	return false
}
