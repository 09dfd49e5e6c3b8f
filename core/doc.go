// Package core contains the request-log domain contracts, configuration, the
// constants table for the Google endpoints, and the error taxonomy shared by
// the auth, sheets, requestlog and edge packages. Lower-level adapters depend
// on this package; core must not depend on transport or host adapters.
package core
