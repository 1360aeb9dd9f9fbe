package api

// Version identifies the engine build reported by the health endpoint.
// Bump on any change that affects resolution outcomes, since recorded
// games only verify against the engine version that produced them.
const Version = "1.0.0"
