package auth

import "context"

type contextKey string

const contextKeyCredential contextKey = "auth.credential"

// WithCredential stores the request credential in context.
func WithCredential(ctx context.Context, cred Credential) context.Context {
	return context.WithValue(ctx, contextKeyCredential, cred)
}

// CredentialFromContext extracts the request credential.
func CredentialFromContext(ctx context.Context) (Credential, bool) {
	if ctx == nil {
		return Credential{}, false
	}
	cred, ok := ctx.Value(contextKeyCredential).(Credential)
	return cred, ok && cred.Token != ""
}

// SubjectFromContext extracts the credential subject from context.
func SubjectFromContext(ctx context.Context) string {
	cred, _ := CredentialFromContext(ctx)
	return cred.Subject
}

// RoleFromContext extracts the credential role from context.
func RoleFromContext(ctx context.Context) Role {
	cred, _ := CredentialFromContext(ctx)
	return cred.Role
}
