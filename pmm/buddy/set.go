package buddy

import "sort"

// addrSet is a sorted-slice-backed ordered set of addresses. It plays the
// role the Rust original fills with a BTreeSet<usize>: each size class needs
// only insert, remove-by-value, and "give me the minimum element", all of
// which a sorted slice supports in O(log n) lookup / O(n) shift, which is
// fine for the handful of free blocks a boot-time allocator manages.
type addrSet struct {
	addrs []uint64
}

// insert adds addr to the set. No-op if addr is already present.
func (s *addrSet) insert(addr uint64) {
	i := sort.Search(len(s.addrs), func(i int) bool { return s.addrs[i] >= addr })
	if i < len(s.addrs) && s.addrs[i] == addr {
		return
	}
	s.addrs = append(s.addrs, 0)
	copy(s.addrs[i+1:], s.addrs[i:])
	s.addrs[i] = addr
}

// remove deletes addr from the set, reporting whether it was present.
func (s *addrSet) remove(addr uint64) bool {
	i := sort.Search(len(s.addrs), func(i int) bool { return s.addrs[i] >= addr })
	if i >= len(s.addrs) || s.addrs[i] != addr {
		return false
	}
	s.addrs = append(s.addrs[:i], s.addrs[i+1:]...)
	return true
}

// popMin removes and returns the smallest address in the set.
func (s *addrSet) popMin() (uint64, bool) {
	if len(s.addrs) == 0 {
		return 0, false
	}
	addr := s.addrs[0]
	s.addrs = s.addrs[1:]
	return addr, true
}

func (s *addrSet) empty() bool {
	return len(s.addrs) == 0
}

func (s *addrSet) len() int {
	return len(s.addrs)
}
