package libkv

import (
	"bytes"

	"github.com/AmitPr/libkv/store"
)

// member is the head of one set's ascending scan. key is the encoded
// member, copied so it outlives the next step of the scan.
type member[K any] struct {
	it    *Iterator[K, struct{}]
	key   []byte
	value K
	valid bool
}

func (m *member[K]) next() error {
	m.valid = m.it.Next()
	if !m.valid {
		return m.it.Err()
	}
	m.key = append(m.key[:0], m.it.RawKey()[len(m.it.prefix):]...)
	m.value = m.it.Entry().Key
	return nil
}

func openMembers[K any](r store.Ranger, sets []Set[K]) ([]*member[K], func(), error) {
	heads := make([]*member[K], 0, len(sets))
	closeAll := func() {
		for _, h := range heads {
			h.it.Close()
		}
	}
	for _, s := range sets {
		it, err := s.m.All(r, store.Ascending)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		h := &member[K]{it: it}
		heads = append(heads, h)
		if err := h.next(); err != nil {
			closeAll()
			return nil, nil, err
		}
	}
	return heads, closeAll, nil
}

// Union returns the members of any of sets in ascending order. Sets are
// compared by encoded member, so they must share a key codec.
func Union[K any](r store.Ranger, sets ...Set[K]) ([]K, error) {
	heads, closeAll, err := openMembers(r, sets)
	if err != nil {
		return nil, err
	}
	defer closeAll()

	var out []K
	var smallest []byte
	for {
		var lowest *member[K]
		for _, h := range heads {
			if h.valid && (lowest == nil || bytes.Compare(h.key, lowest.key) < 0) {
				lowest = h
			}
		}
		if lowest == nil {
			return out, nil
		}
		out = append(out, lowest.value)
		smallest = append(smallest[:0], lowest.key...)
		for _, h := range heads {
			if h.valid && bytes.Equal(h.key, smallest) {
				if err := h.next(); err != nil {
					return out, err
				}
			}
		}
	}
}

// Intersect returns the members found in every one of sets, in ascending
// order. With no sets the result is empty.
func Intersect[K any](r store.Ranger, sets ...Set[K]) ([]K, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	heads, closeAll, err := openMembers(r, sets)
	if err != nil {
		return nil, err
	}
	defer closeAll()

	var out []K
	for {
		var highest *member[K]
		for _, h := range heads {
			if !h.valid {
				return out, nil
			}
			if highest == nil || bytes.Compare(h.key, highest.key) > 0 {
				highest = h
			}
		}
		target := append([]byte(nil), highest.key...)
		agreed := true
		for _, h := range heads {
			for h.valid && bytes.Compare(h.key, target) < 0 {
				agreed = false
				if err := h.next(); err != nil {
					return out, err
				}
			}
			if !h.valid {
				return out, nil
			}
			if !bytes.Equal(h.key, target) {
				agreed = false
			}
		}
		if !agreed {
			continue
		}
		out = append(out, highest.value)
		for _, h := range heads {
			if err := h.next(); err != nil {
				return out, err
			}
		}
	}
}
