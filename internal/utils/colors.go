package utils

import "hash/fnv"

// palette is the fixed set of colors assigned to tags and projects when
// the caller does not supply one.
var palette = []string{
	"#EF4444", // red
	"#F97316", // orange
	"#F59E0B", // amber
	"#10B981", // emerald
	"#14B8A6", // teal
	"#3B82F6", // blue
	"#6366F1", // indigo
	"#8B5CF6", // violet
	"#EC4899", // pink
	"#64748B", // slate
}

// ColorForName picks a palette color deterministically from the name, so
// the same tag always gets the same color and tests stay reproducible.
func ColorForName(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return palette[h.Sum32()%uint32(len(palette))]
}
