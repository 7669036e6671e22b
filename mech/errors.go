// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mech

// ConfigError is the class of errors caused by an inconsistent model
// description.  They are raised while a cell group is being set up and
// abort its construction.  Use errors.Is with the values below, or
// errors.As with a ConfigError to test for the class.
type ConfigError string

func (e ConfigError) Error() string {
	return string(e)
}

const (
	ErrNoSuchMechanism    ConfigError = "no such mechanism"
	ErrDuplicateMechanism ConfigError = "duplicate mechanism name"
	ErrNoSuchGlobal       ConfigError = "no such global"
	ErrNoSuchParameter    ConfigError = "no such parameter"
	ErrParameterSize      ConfigError = "parameter size mismatch"
	ErrMissingIon         ConfigError = "mechanism uses an ion with no shared state"
	ErrIonValence         ConfigError = "ion valence mismatch"
	ErrBadDerivation      ConfigError = "invalid mechanism derivation"
	ErrBadLayout          ConfigError = "invalid mechanism layout"
	ErrKindMismatch       ConfigError = "mechanism kind mismatch"
)
