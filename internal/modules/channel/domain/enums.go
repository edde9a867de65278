//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// SubscriptionStatus is the membership state of the monitoring session in a source channel
// ENUM(unsubscribed,pending_join,subscribed,unreachable)
type SubscriptionStatus string

// AppEnv represents the application environment
// ENUM(local,production,development,testing)
type AppEnv string
