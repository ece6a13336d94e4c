package domain

// TokenVerifier verifies a bearer token and returns the authenticated subject.
// Token issuance lives outside this service.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}
