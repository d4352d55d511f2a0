// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"

	"github.com/luxfi/database"

	safemath "github.com/luxfi/math"
)

// ReadWriter is the subset of database.Database the ledger components write
// through. A versiondb satisfies it, which is what makes every operation
// all-or-nothing.
type ReadWriter interface {
	database.KeyValueReader
	database.KeyValueWriterDeleter
}

// Key concatenates key parts into a fresh slice.
func Key(parts ...[]byte) []byte {
	size := 0
	for _, part := range parts {
		size += len(part)
	}
	key := make([]byte, 0, size)
	for _, part := range parts {
		key = append(key, part...)
	}
	return key
}

// GetRecord decodes the record stored at key into v. It returns
// database.ErrNotFound if the key is absent.
func GetRecord(db database.KeyValueReader, key []byte, v interface{}) error {
	b, err := db.Get(key)
	if err != nil {
		return err
	}
	version, err := Codec.Unmarshal(b, v)
	if err != nil {
		return err
	}
	if version != CodecVersion {
		return errWrongVersion
	}
	return nil
}

// PutRecord encodes v and stores it at key.
func PutRecord(db database.KeyValueWriter, key []byte, v interface{}) error {
	b, err := Codec.Marshal(CodecVersion, v)
	if err != nil {
		return err
	}
	return db.Put(key, b)
}

// GetCount returns the counter stored at key, treating an absent key as zero.
func GetCount(db database.KeyValueReader, key []byte) (uint64, error) {
	count, err := database.GetUInt64(db, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return count, err
}

// Increment adds one to the counter at key and returns the value it held
// before the increment.
func Increment(db ReadWriter, key []byte) (uint64, error) {
	count, err := GetCount(db, key)
	if err != nil {
		return 0, err
	}
	next, err := safemath.Add(count, 1)
	if err != nil {
		return 0, err
	}
	return count, database.PutUInt64(db, key, next)
}

// Mark stores an empty value at key. Marks give set semantics: a key is
// either a member or it is not.
func Mark(db database.KeyValueWriter, key []byte) error {
	return db.Put(key, nil)
}
