//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Decision is the owner's verdict on a pending post
// ENUM(approve,reject)
type Decision string

// PendingState tells whether a post still waits for decisions
// ENUM(open,resolved)
type PendingState string
