// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package json provides JSON encodings for ledger amounts.
package json

import "strconv"

const Null = "null"

// Uint64 marshals as a decimal string so amounts above 2^53 survive
// JavaScript clients. Both quoted and bare numbers are accepted on input.
type Uint64 uint64

func (u Uint64) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(u), 10) + `"`), nil
}

func (u *Uint64) UnmarshalJSON(b []byte) error {
	str := string(b)
	if str == Null {
		return nil
	}
	if n := len(str); n >= 2 && str[0] == '"' && str[n-1] == '"' {
		str = str[1 : n-1]
	}
	val, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return err
	}
	*u = Uint64(val)
	return nil
}
