// Package auth implements the credential and session lifecycle for the service.
//
// Passwords are never stored: registration derives a key from the password
// and a random per-user salt via PBKDF2-HMAC-SHA256, and only the salt,
// derived key and iteration count are persisted. Login re-derives the key
// and compares in constant time.
//
// Sessions are opaque random tokens validated against the session store on
// every authenticated request, so a single delete invalidates a session
// everywhere it is checked. The token travels in the "session" cookie;
// handlers in this package are the only place that cookie is read or set.
//
// # Configuration
//
//	AUTH_PBKDF2_ITERATIONS=120000     # PBKDF2 work factor for new hashes
//	AUTH_SESSION_TTL=0                # 0 = sessions never expire
//	AUTH_SECURE_COOKIES=true          # HTTPS-only cookies
//	AUTH_SESSION_CLEANUP_SCHEDULE=... # cron expression for purging expired rows
//
// # Usage
//
// Wire the service and controller in entrypoint:
//
//	svc := auth.NewService(userRepo, sessionRepo, cfg.Auth)
//	ctrl := auth.NewController(svc, cfg.Auth)
//	ctrl.RegisterRoutes(router)
package auth
