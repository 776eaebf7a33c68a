// Package backend implements the three mutually exclusive data backends
// behind the uniform facade (demo, live_api, live) and the startup logic
// that selects exactly one of them.
package backend

import "github.com/lucasharte/arbot/internal/domain"

// Select decides which backend mode is active for the life of the process.
// It is a pure function of the two credential flags, evaluated once at
// startup and never re-evaluated:
//
//   - an aggregation-service credential always wins, regardless of the
//     trading credential: live_api
//   - otherwise a trading credential selects the legacy direct wiring: live
//   - with neither, the self-contained simulation: demo
func Select(hasAggregatorCredential, hasTradingCredential bool) domain.Mode {
	switch {
	case hasAggregatorCredential:
		return domain.ModeLiveAPI
	case hasTradingCredential:
		return domain.ModeLive
	default:
		return domain.ModeDemo
	}
}
