// Package http exposes the portal over HTTP.
//
// Public endpoints:
//   - GET /health: liveness plus dependency pings.
//   - GET /sessions/by-email?email=: invitations for an address, returned as
//     {"success":true,"sessions":[...]}.
//   - GET and POST /sessions/{id}/respond/suggest-time and
//     /sessions/{id}/respond/suggest-topic: HTML pages reached from invitation
//     emails. The invite token travels in the query string (GET) or the form body
//     (POST). POSTs are rate limited per client address.
//
// Endpoints behind a bearer token or the session_token cookie:
//   - POST /sessions/respond: dashboard accept or decline.
//   - GET /faculty/sessions: dashboard sessions with display fields and stats.
//   - GET /sessions, POST /sessions, GET /sessions/{id}, DELETE /sessions/{id}:
//     organizer invitation management. Creating a slot that overlaps the same
//     faculty member or room returns "warnings" alongside the 201 body.
//   - GET /reports/analytics and GET /reports/{section}: analytics, optionally
//     exported with ?format=json|csv|excel.
//
// JSON errors are always {"success":false,"error":"..."} with an optional
// "errors" map of field messages. DTOs live in invitation_dto.go and never carry
// the invite token.
package http
