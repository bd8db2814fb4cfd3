package command

import "github.com/mediocregopher/tiniredis/internal/store"

// errToResponse maps a store/argument error to the RESP error frame a
// client sees. Store-defined error types already carry whatever prefix
// Redis convention gives them (WRONGTYPE, the bare INCR/INCRBYFLOAT
// messages, stream/geo semantic errors); anything else — including
// ErrSyntax, which already formats its own "ERR ..." messages — is passed
// through, falling back to a generic ERR wrap for unrecognized errors (e.g.
// a malformed KEYS glob pattern from path.Match).
func errToResponse(err error) Response {
	switch err.(type) {
	case store.ErrWrongType, store.ErrInvalidStreamID, store.ErrInvalidGeoCoordinate, ErrSyntax:
		return errResponse(err.Error())
	case store.ErrNotInteger, store.ErrNotFloat:
		return errResponsef("ERR %s", err.Error())
	default:
		return errResponsef("ERR %s", err.Error())
	}
}
