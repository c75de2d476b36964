// Package esi provides the client for the EVE Swagger Interface (ESI) market
// endpoints.
//
// Endpoints used:
//   - GET /markets/{region}/types/?page=N (paginated via x-pages header)
//   - GET /markets/{region}/orders/?page=N (paginated via x-pages header)
//   - GET /markets/{region}/history/?type_id=T
//   - GET /universe/types/{id}/ (publish check)
//
// The client is called anonymously and holds a single process-wide permit
// pool bounding concurrent in-flight requests. HTTP 420 is the upstream
// rate-limit signal. No failure is retried inside the client; retry policy
// belongs to the next scheduled run.
package esi
