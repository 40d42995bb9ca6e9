// Package middleware groups the HTTP middleware of the control API.
//
// # Components
//
//   - auth: API key validation. The key is read from the X-API-Key header or
//     the api_key query parameter.
//   - rayid: assigns a RayID to every request, stores it in the Fiber locals
//     and echoes it in the response headers for tracing.
//
// Register rayid first so that every log line, including auth rejections,
// carries the RayID.
package middleware
