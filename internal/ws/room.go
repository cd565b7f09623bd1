package ws

import "sort"

// room is a membership set. Each member carries the sequence number of its
// join so listings come out in join order.
type room map[string]uint64

func (r room) ordered() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return r[ids[i]] < r[ids[j]] })
	return ids
}
