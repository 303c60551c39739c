package model

import "github.com/google/uuid"

const (
	columnIDPrefix = "col"
	taskIDPrefix   = "task"
)

// newRandomID returns prefix-<uuid>. UUIDv4 gives 122 random bits, so collisions
// within one board are not a practical concern.
func newRandomID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func NewColumnID() string { return newRandomID(columnIDPrefix) }

func NewTaskID() string { return newRandomID(taskIDPrefix) }
