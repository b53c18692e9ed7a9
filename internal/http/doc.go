// Package http exposes the membership and application workflow over JSON.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}. The
//     token is also surfaced via the `X-Session-Token` header and a
//     `session_token` cookie. DELETE /sessions/current revokes it.
//   - POST /memberships: public registration. GET /memberships accepts the
//     q, status, from and to query parameters. GET /memberships/{id},
//     POST /memberships/{id}/approve ({"login_email","temp_password"}) and
//     POST /memberships/{id}/reject drive review. GET /me/membership returns
//     the caller's own record.
//   - GET|POST /offers, GET|PUT|DELETE /offers/{id}: the offer catalog.
//     Mutations require an administrator.
//   - POST /applications ({"offer_id"}), GET /applications (administrators,
//     filterable), PUT /applications/{id}/status, GET /me/applications and
//     GET /memberships/{id}/applications (with per-status counts).
//   - GET|POST /notifications (administrators) and GET /me/notifications.
//   - GET /stats: dashboard aggregate.
//   - GET /me/saved-offers and POST /me/saved-offers/{offerID} (toggle).
//
// Every route except POST /sessions and POST /memberships requires a session.
// Request/response DTOs live in dto.go and beside their handlers.
package http
