package utils

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateNanoIDWithPrefix returns ids like "txn_x7f9..." used as primary keys.
func GenerateNanoIDWithPrefix(prefix string, length int) string {
	id, err := gonanoid.Generate(idAlphabet, length)
	if err != nil {
		id = gonanoid.Must(length)
	}
	return prefix + "_" + id
}

func Now() time.Time {
	return time.Now().UTC()
}
