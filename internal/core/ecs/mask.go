package ecs

// bitmask256 is a set of up to 256 component ids. Each archetype shape and each
// requirement carries one, so the superset test in World.Tick is four word compares.
type bitmask256 [4]uint64

func (m *bitmask256) set(bit ComponentID) {
	i := bit >> 6
	o := bit & 63
	m[i] |= uint64(1) << uint64(o)
}

// contains reports whether every bit of sub is also set in m.
func (m bitmask256) contains(sub bitmask256) bool {
	return (m[0]&sub[0]) == sub[0] &&
		(m[1]&sub[1]) == sub[1] &&
		(m[2]&sub[2]) == sub[2] &&
		(m[3]&sub[3]) == sub[3]
}

func (m bitmask256) containsBit(bit ComponentID) bool {
	i := bit >> 6
	o := bit & 63
	return (m[i] & (uint64(1) << uint64(o))) != 0
}
