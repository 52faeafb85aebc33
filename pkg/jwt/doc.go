// Package jwt signs and validates RS256 access tokens for the Huddle API.
//
//	svc, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "./keys/private.pem",
//	    PublicKeyPath:  "./keys/public.pem",
//	    Issuer:         "huddle.forgo.software",
//	    ExpirationMins: 60,
//	})
//
//	token, err := svc.Sign(jwt.Claims{
//	    RegisteredClaims: gojwt.RegisteredClaims{Subject: user.ID},
//	    Email:            user.Email,
//	    Username:         user.UserName,
//	})
//
//	claims, err := svc.Validate(token)
//
// Validation errors are reported as the package sentinels (ErrTokenExpired,
// ErrInvalidSignature, ...) so callers never depend on the underlying library.
package jwt
