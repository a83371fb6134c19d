/*
Package authsdk provides a client for the web template API.

# Overview

The service keeps sessions in HTTP-only cookies, so the client behaves like a
browser: an SDKClient owns a cookie jar and every call carries whatever
cookies the server has set. Create one client per user session:

	alice := authsdk.NewSDKClient("http://localhost:8080")

	_, err := alice.Signup(ctx, authsdk.SignupRequest{Username: "alice", Password: "secret123"})
	_, err = alice.Login(ctx, authsdk.LoginRequest{Username: "alice", Password: "secret123"})

	me, err := alice.Me(ctx)

# CSRF

Login, refresh and GET /csrf-token set a csrf_token cookie. Mutating calls
(POST, DELETE) copy that cookie into the X-CSRF-Token header automatically.
GoogleLogin fetches a token first when the jar has none.

# MFA

	setup, err := alice.SetupMFA(ctx)
	// add setup.Secret to an authenticator, then
	_, err = alice.VerifyAndEnableMFA(ctx, code)

	// later logins need the current code
	_, err = alice.Login(ctx, authsdk.LoginRequest{Username: "alice", Password: "secret123", MFACode: code})

# Error Handling

Every non-success response is returned as an *APIError carrying the status
and the server's detail message:

	_, err := bob.DeletePost(ctx, postID)
	if authsdk.StatusCode(err) == http.StatusForbidden {
		// not the owner
	}

# Thread Safety

An SDKClient may be shared between goroutines; the cookie jar is safe for
concurrent use. Calls racing a Login or Refresh may observe either session.
*/
package authsdk
