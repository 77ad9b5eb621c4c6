package jats

import "emperror.dev/errors"

var ErrValidationFailed = errors.New("JATS validation failed")
var ErrNoDoctype = errors.New("no DOCTYPE declaration found")
var ErrNoDTD = errors.New("no local DTD for DOCTYPE")
