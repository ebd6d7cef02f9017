// Package consent reads prior consent decisions. A decision is a (user,
// client) pair marked granted; the gateway never writes it. The external
// authorization core records grants when the consent form is submitted.
package consent

import "context"

//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks

// DecisionStore answers whether a user still needs to be asked before a
// client may act on their behalf.
//
// Errors must propagate: defaulting to "no consent needed" on a store outage
// would silently auto-approve, which is a security regression.
type DecisionStore interface {
	NeedsConsent(ctx context.Context, userID, clientID string) (bool, error)
}
