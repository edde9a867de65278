//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// ConnectionState is the lifecycle of the monitoring session
// ENUM(disconnected,connecting,auth_challenge,connected)
type ConnectionState string

// ResolveOutcome classifies looking up a source on the network
// ENUM(resolved,invalid,not_found,private)
type ResolveOutcome string

// JoinOutcome classifies a join attempt
// ENUM(joined,already_member,request_sent,invalid,not_found,private)
type JoinOutcome string

// MediaKind is how a downloaded attachment is re-sent
// ENUM(photo,document)
type MediaKind string
