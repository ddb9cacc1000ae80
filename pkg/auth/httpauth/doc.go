// Package httpauth implements auth.Authenticator against the sync backend's
// REST login endpoint.
//
// The backend wraps every response in an envelope:
//
//	{"code": 200, "message": "ok", "data": {"accessToken": "...", "userId": 1, "username": "root", "role": "ADMIN"}}
//
// Business failures arrive as {"code": 401, "message": "INVALID_PASSWORD"}
// and are returned as *APIError. Rejected credentials also match
// auth.ErrInvalidCredentials with errors.Is.
package httpauth
