package rlp

// Kind classifies a decoded RLP item.
type Kind byte

const (
	// String is an RLP byte string.
	String Kind = iota
	// List is an RLP list.
	List
)

// Item is one decoded element of an RLP list.
type Item struct {
	Kind    Kind
	Payload []byte // content bytes, header stripped
	Raw     []byte // full encoding including the header
}

// Split decodes b as a single RLP list and returns its top-level items.
// Canonical form is enforced: every rejected encoding that a canonical
// encoder cannot produce yields ErrCanonSize.
func Split(b []byte) ([]Item, error) {
	kind, payload, rest, err := splitItem(b)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, ErrTrailingBytes
	}
	if kind != List {
		return nil, ErrNotList
	}

	var items []Item
	for len(payload) > 0 {
		k, content, next, err := splitItem(payload)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{
			Kind:    k,
			Payload: content,
			Raw:     payload[:len(payload)-len(next)],
		})
		payload = next
	}
	return items, nil
}

// SplitString decodes b as a single RLP string and returns its payload.
func SplitString(b []byte) ([]byte, error) {
	kind, payload, rest, err := splitItem(b)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, ErrTrailingBytes
	}
	if kind != String {
		return nil, ErrNotString
	}
	return payload, nil
}

// CountItems returns the number of top-level items in the list b.
func CountItems(b []byte) (int, error) {
	items, err := Split(b)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// splitItem decodes the first item of b, returning its kind, payload and the
// remaining input.
func splitItem(b []byte) (Kind, []byte, []byte, error) {
	if len(b) == 0 {
		return 0, nil, nil, ErrInputTooShort
	}
	prefix := b[0]
	switch {
	case prefix <= 0x7f:
		// Single byte, its own encoding.
		return String, b[:1], b[1:], nil

	case prefix <= 0xb7:
		size := int(prefix - 0x80)
		if len(b) < 1+size {
			return 0, nil, nil, ErrValueTooLarge
		}
		if size == 1 && b[1] <= 0x7f {
			// Should have been encoded as the byte itself.
			return 0, nil, nil, ErrCanonSize
		}
		return String, b[1 : 1+size], b[1+size:], nil

	case prefix <= 0xbf:
		size, rest, err := splitLongSize(b, prefix-0xb7)
		if err != nil {
			return 0, nil, nil, err
		}
		return String, rest[:size], rest[size:], nil

	case prefix <= 0xf7:
		size := int(prefix - 0xc0)
		if len(b) < 1+size {
			return 0, nil, nil, ErrValueTooLarge
		}
		return List, b[1 : 1+size], b[1+size:], nil

	default:
		size, rest, err := splitLongSize(b, prefix-0xf7)
		if err != nil {
			return 0, nil, nil, err
		}
		return List, rest[:size], rest[size:], nil
	}
}

// splitLongSize reads an n-byte big-endian length following the prefix byte
// and checks it is canonical (no leading zero, value above 55).
func splitLongSize(b []byte, n byte) (int, []byte, error) {
	if len(b) < 1+int(n) {
		return 0, nil, ErrInputTooShort
	}
	if b[1] == 0 {
		return 0, nil, ErrCanonSize
	}
	var size uint64
	for _, c := range b[1 : 1+n] {
		size = size<<8 | uint64(c)
	}
	if size <= 55 {
		return 0, nil, ErrCanonSize
	}
	if size > uint64(len(b)-1-int(n)) {
		return 0, nil, ErrValueTooLarge
	}
	return int(size), b[1+n:], nil
}
