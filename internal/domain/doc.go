// Package domain models the shared vocabulary of the disaster response hub.
//
// # Data Sources
//
// The hub aggregates three kinds of unreliable, rate-limited upstreams:
//
//   - A named-entity extraction service that labels location spans in free
//     text ("Heavy flooding near Wall Street" → "Wall Street").
//   - Forward geocoding providers (Nominatim, Mapbox) that resolve a location
//     phrase to WGS-84 coordinates. Providers are tried in a fixed order and
//     the first usable candidate wins.
//   - Social-media and official-update feeds producing timestamped items
//     scoped to a disaster.
//
// All upstream results are memoized in a TTL cache; the hub tolerates staleness
// up to the configured TTL in exchange for staying inside provider rate limits.
//
// # Priority Classification
//
// Feed items carry a four-level priority (default < medium < high < urgent)
// used for presentation only; the hub never reorders items by priority.
// Priority alerts are detected by case-insensitive substring match of a fixed
// urgency vocabulary ("urgent", "sos", "emergency", "trapped", "critical",
// "help needed", "life-threatening") against item content. See
// [DetectPriorityAlerts].
//
// # Tag Filtering
//
// Tag filters use broad-recall matching: an item matches when any of its
// keywords contains any requested tag as a case-insensitive substring.
// Under-matching is costlier than over-matching during emergency triage, so
// "foo" matches an item keyworded "food". See [MatchesTags].
//
// # Lifecycle Events
//
// Every create/update/delete completed by the CRUD layer is published as a
// [LifecycleEvent] to the fan-out hub. An event is either global (all live
// connections) or scoped to one disaster (only its current subscribers).
// Delivery is best-effort at the moment of publish; there is no queue, retry,
// or persistence.
package domain
