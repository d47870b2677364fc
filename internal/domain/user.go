// Package domain contains entities without logic, just meta-data
package domain

import "errors"

var ErrNotFound = errors.New("not found")

type UserID string
