// Copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors contains common error types for the OpenPGP signature
// packet parsing core.
package errors

// A StructuralError is returned when OpenPGP data is found to be
// syntactically invalid. No amount of further input can repair the data,
// so retrying with a longer buffer is pointless.
type StructuralError string

func (s StructuralError) Error() string {
	return "openpgp: invalid data: " + string(s)
}

// An IncompleteError is returned when the byte source ends before a
// structurally declared boundary is reached. Callers feeding the parser
// from an incrementally filled stream may retry once more bytes arrive.
type IncompleteError string

func (i IncompleteError) Error() string {
	return "openpgp: incomplete data: " + string(i)
}

// UnsupportedError indicates that, while the input is syntactically
// plausible, a fixed enumeration field holds a code outside the known
// set.
type UnsupportedError string

func (s UnsupportedError) Error() string {
	return "openpgp: unsupported feature: " + string(s)
}

// InvalidArgumentError indicates that the caller is in error and passed
// an incorrect value.
type InvalidArgumentError string

func (i InvalidArgumentError) Error() string {
	return "openpgp: invalid argument: " + string(i)
}
