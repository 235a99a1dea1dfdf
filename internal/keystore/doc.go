// Package keystore provides the agent's durable key-value configuration store.
//
// Operator settings (server, interval, token, pin, calibration) and the
// device identity live in a single SQLite table. Keys missing at boot are
// resolved once through an interactive Prompter and persisted before the
// supervisory loop starts.
//
// A key that is absent means "never configured". A key holding the empty
// string is a deliberate answer: an empty "jwt" means no authentication.
// Get reports the two cases separately.
//
// Usage:
//
//	store := keystore.NewSQLiteStore(db)
//	token, err := keystore.Require(ctx, store, prompter, keystore.Question{
//	    Key:        "jwt",
//	    Text:       "Bearer token",
//	    AllowEmpty: true,
//	})
package keystore
