package models

import "strings"

// SurprisePrefix is the key prefix reserved for admin-created surprise
// challenges.
const SurprisePrefix = "SUP"

// Challenge is one row of the Challenges catalog worksheet.
type Challenge struct {
	Key             string
	Name            string
	Points          int
	MinParticipants int
}

// KeyPrefix returns the category part of the key, the text before the first
// dash ("WEB" for "WEB-004"). Keys without a dash are their own prefix.
func (c Challenge) KeyPrefix() string {
	if i := strings.Index(c.Key, "-"); i > 0 {
		return c.Key[:i]
	}
	return c.Key
}

// IsSurprise reports whether this is a surprise challenge.
func (c Challenge) IsSurprise() bool {
	return strings.EqualFold(c.KeyPrefix(), SurprisePrefix)
}
