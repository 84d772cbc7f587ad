// Copyright (c) 2023 Colin McRae

package bkz

import (
	"errors"

	"github.com/predrag3141/BKZ/enum"
	"github.com/predrag3141/BKZ/gso"
	"github.com/predrag3141/BKZ/lll"
)

// Status reports how a reduction ended. Budget exhaustion is a status,
// not an error: the basis is left consistent and LLL-reduced on the
// prefix already swept.
type Status int

const (
	RedSuccess Status = iota
	RedBKZFailure
	RedBKZTimeLimit
	RedBKZLoopsLimit
	RedEnumFailure
	RedBabaiFailure
	RedLLLFailure
	RedGSOFailure
	RedParamError
)

// StatusString returns a short description of s.
func StatusString(s Status) string {
	switch s {
	case RedSuccess:
		return "success"
	case RedBKZFailure:
		return "failure"
	case RedBKZTimeLimit:
		return "time limit exceeded"
	case RedBKZLoopsLimit:
		return "loops limit exceeded"
	case RedEnumFailure:
		return "enumeration failure"
	case RedBabaiFailure:
		return "size reduction failure"
	case RedLLLFailure:
		return "LLL failure"
	case RedGSOFailure:
		return "GSO failure"
	case RedParamError:
		return "parameter error"
	}
	return "unknown status"
}

// errBabai marks a fault in the nearest-plane cleanup of an inserted row.
var errBabai = errors.New("bkz: size reduction of the inserted row failed")

// statusFromError classifies a fault that escaped a tour into the status
// the caller sees.
func statusFromError(err error) Status {
	switch {
	case errors.Is(err, enum.ErrNodesExceeded):
		return RedEnumFailure
	case errors.Is(err, errBabai):
		return RedBabaiFailure
	case errors.Is(err, lll.ErrLLLFailure):
		return RedLLLFailure
	case errors.Is(err, gso.ErrGSOFailure):
		return RedGSOFailure
	}
	return RedBKZFailure
}
