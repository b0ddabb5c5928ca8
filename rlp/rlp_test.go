package rlp

import (
	"bytes"
	"testing"

	gethrlp "github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

func TestAppendString(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"empty", []byte{}, []byte{0x80}},
		{"single low byte", []byte{0x7f}, []byte{0x7f}},
		{"single high byte", []byte{0x80}, []byte{0x81, 0x80}},
		{"zero byte", []byte{0x00}, []byte{0x00}},
		{"dog", []byte("dog"), []byte{0x83, 'd', 'o', 'g'}},
		{"55 bytes", bytes.Repeat([]byte{0xaa}, 55), append([]byte{0xb7}, bytes.Repeat([]byte{0xaa}, 55)...)},
		{"56 bytes", bytes.Repeat([]byte{0xaa}, 56), append([]byte{0xb8, 56}, bytes.Repeat([]byte{0xaa}, 56)...)},
	}
	for _, tt := range tests {
		got := AppendString(nil, tt.in)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("%s: AppendString = %x, want %x", tt.name, got, tt.want)
		}
	}
}

func TestAppendUint(t *testing.T) {
	tests := []struct {
		in   uint64
		want []byte
	}{
		{0, []byte{0x80}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x81, 0x80}},
		{256, []byte{0x82, 0x01, 0x00}},
		{0xffffff, []byte{0x83, 0xff, 0xff, 0xff}},
		{1 << 56, []byte{0x88, 0x01, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		got := AppendUint(nil, tt.in)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("AppendUint(%d) = %x, want %x", tt.in, got, tt.want)
		}
	}
}

func TestAppendUint256(t *testing.T) {
	if got := AppendUint256(nil, nil); !bytes.Equal(got, []byte{0x80}) {
		t.Errorf("AppendUint256(nil) = %x, want 80", got)
	}
	if got := AppendUint256(nil, uint256.NewInt(0)); !bytes.Equal(got, []byte{0x80}) {
		t.Errorf("AppendUint256(0) = %x, want 80", got)
	}
	v := uint256.NewInt(1000000000000000000) // 1 ether in wei
	got := AppendUint256(nil, v)
	want := AppendString(nil, v.Bytes())
	if !bytes.Equal(got, want) {
		t.Errorf("AppendUint256(1e18) = %x, want %x", got, want)
	}
}

func TestWrapList(t *testing.T) {
	// ["cat", "dog"] from the canonical test vectors.
	payload := AppendString(nil, []byte("cat"))
	payload = AppendString(payload, []byte("dog"))
	got := WrapList(payload)
	want := []byte{0xc8, 0x83, 'c', 'a', 't', 0x83, 'd', 'o', 'g'}
	if !bytes.Equal(got, want) {
		t.Errorf("WrapList = %x, want %x", got, want)
	}

	long := WrapList(bytes.Repeat([]byte{0x80}, 56))
	if long[0] != 0xf8 || long[1] != 56 {
		t.Errorf("WrapList long header = %x %x, want f8 38", long[0], long[1])
	}
}

func TestSplitRoundTrip(t *testing.T) {
	payload := AppendString(nil, []byte("cat"))
	payload = AppendUint(payload, 1024)
	payload = append(payload, WrapList(AppendString(nil, []byte("x")))...)
	enc := WrapList(payload)

	items, err := Split(enc)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Split returned %d items, want 3", len(items))
	}
	if items[0].Kind != String || !bytes.Equal(items[0].Payload, []byte("cat")) {
		t.Errorf("item 0 = %v %x", items[0].Kind, items[0].Payload)
	}
	if items[1].Kind != String || !bytes.Equal(items[1].Payload, []byte{0x04, 0x00}) {
		t.Errorf("item 1 = %v %x", items[1].Kind, items[1].Payload)
	}
	if items[2].Kind != List {
		t.Errorf("item 2 kind = %v, want List", items[2].Kind)
	}
	if !bytes.Equal(items[2].Raw, WrapList(AppendString(nil, []byte("x")))) {
		t.Errorf("item 2 raw = %x", items[2].Raw)
	}
}

func TestSplitString(t *testing.T) {
	enc := AppendString(nil, []byte("hello world"))
	got, err := SplitString(enc)
	if err != nil {
		t.Fatalf("SplitString: %v", err)
	}
	if !bytes.Equal(got, []byte("hello world")) {
		t.Errorf("SplitString = %x", got)
	}

	if _, err := SplitString(WrapList(nil)); err != ErrNotString {
		t.Errorf("SplitString(list) err = %v, want ErrNotString", err)
	}
}

func TestCountItems(t *testing.T) {
	var payload []byte
	for i := 0; i < 17; i++ {
		payload = append(payload, 0x80)
	}
	n, err := CountItems(WrapList(payload))
	if err != nil {
		t.Fatalf("CountItems: %v", err)
	}
	if n != 17 {
		t.Errorf("CountItems = %d, want 17", n)
	}

	if _, err := CountItems([]byte{0x83, 'c', 'a', 't'}); err != ErrNotList {
		t.Errorf("CountItems(string) err = %v, want ErrNotList", err)
	}
}

func TestSplitRejectsNonCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"single byte behind size prefix", WrapList([]byte{0x81, 0x05}), ErrCanonSize},
		{"long form for short string", append([]byte{0xb8, 0x02}, make([]byte, 2)...), ErrCanonSize},
		{"length with leading zero", append([]byte{0xb9, 0x00, 0x38}, make([]byte, 56)...), ErrCanonSize},
		{"truncated payload", []byte{0xc3, 0x80}, ErrValueTooLarge},
		{"truncated header", []byte{0xf8}, ErrInputTooShort},
		{"declared size beyond input", []byte{0xc2, 0xb8}, ErrValueTooLarge},
		{"trailing bytes", append(WrapList(nil), 0x00), ErrTrailingBytes},
		{"empty input", nil, ErrInputTooShort},
	}
	for _, tt := range tests {
		if _, err := Split(tt.in); err != tt.want {
			t.Errorf("%s: Split err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

// The append-style encoder must agree byte for byte with go-ethereum's
// reflective one for strings and integers.
func TestEncodeMatchesGeth(t *testing.T) {
	strs := [][]byte{
		nil,
		{0x00},
		{0x7f},
		{0x80},
		[]byte("dog"),
		bytes.Repeat([]byte{0x42}, 55),
		bytes.Repeat([]byte{0x42}, 56),
		bytes.Repeat([]byte{0x42}, 300),
	}
	for _, s := range strs {
		want, err := gethrlp.EncodeToBytes(s)
		if err != nil {
			t.Fatalf("geth EncodeToBytes(%x): %v", s, err)
		}
		got := AppendString(nil, s)
		if !bytes.Equal(got, want) {
			t.Errorf("AppendString(%x) = %x, geth = %x", s, got, want)
		}
	}

	uints := []uint64{0, 1, 127, 128, 255, 256, 1 << 20, 1<<63 + 5}
	for _, u := range uints {
		want, err := gethrlp.EncodeToBytes(u)
		if err != nil {
			t.Fatalf("geth EncodeToBytes(%d): %v", u, err)
		}
		got := AppendUint(nil, u)
		if !bytes.Equal(got, want) {
			t.Errorf("AppendUint(%d) = %x, geth = %x", u, got, want)
		}
	}
}
