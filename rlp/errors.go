package rlp

import "errors"

var (
	// ErrNotList is returned when a string is encountered where a list was expected.
	ErrNotList = errors.New("rlp: expected list")

	// ErrNotString is returned when a list is encountered where a string was expected.
	ErrNotString = errors.New("rlp: expected string")

	// ErrCanonSize is returned when an item uses a non-canonical size encoding.
	ErrCanonSize = errors.New("rlp: non-canonical size information")

	// ErrValueTooLarge is returned when a declared length exceeds the input.
	ErrValueTooLarge = errors.New("rlp: value size exceeds available input length")

	// ErrInputTooShort is returned when the input ends inside an item header.
	ErrInputTooShort = errors.New("rlp: input too short")

	// ErrTrailingBytes is returned when input remains after a complete item.
	ErrTrailingBytes = errors.New("rlp: input contains trailing bytes")
)
