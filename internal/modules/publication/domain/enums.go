//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// MediaType represents the kind of attachment a publication carried
// ENUM(none,photo,document)
type MediaType string
