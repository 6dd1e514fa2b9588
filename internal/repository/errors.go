package repository

import (
	"errors"

	"rbac/pkg/apperr"

	"gorm.io/gorm"
)

// ErrNotFound is returned by single-record lookups when no row matches.
var ErrNotFound = errors.New("record not found")

// translate maps driver level failures onto the repository contract. Duplicate keys surface as
// a classified conflict; anything else is returned unchanged.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &apperr.Error{Kind: apperr.Conflict, Message: "Duplicate entry detected.", Err: err}
	default:
		return err
	}
}

// likePattern escapes LIKE wildcards so search input is matched literally as a substring.
func likePattern(s string) string {
	r := []rune{}
	for _, c := range s {
		if c == '\\' || c == '%' || c == '_' {
			r = append(r, '\\')
		}
		r = append(r, c)
	}
	return "%" + string(r) + "%"
}
