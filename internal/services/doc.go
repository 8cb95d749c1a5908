// Package services defines the [MetadataService] interface for the movie catalog and implements it for TMDB.
//
// # TMDB Implementation
//
// [TMDBService] issues one GET per call against the v3 REST API, fixing the language parameter to the
// configured locale (images requests omit it).
//
// Authentication uses whichever credential is configured:
//   - v4 read access token: sent as "Authorization: Bearer" through an [oauth2] static token source
//   - v3 API key: appended as the api_key query parameter
//
// An optional [rate.Limiter] paces outbound requests. It bounds calls made by this process and has
// no effect on inbound traffic.
//
// # Raw Access
//
// [APIService] returns unparsed responses for arbitrary API paths and backs the "tmdb get" command.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : neither credential configured
//   - [shared.ErrNotFound] : TMDB returned 404 for the resource
//   - [shared.ErrServiceUnavailable] : TMDB returned 503
//   - [shared.ErrAPIRequest] : any other non-2xx response, with the TMDB status_message
package services
