package httpx

import "context"

type ctxKey string

const ctxKeySubject ctxKey = "subject"

// WithSubject stores the authenticated subject (username) in ctx.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ctxKeySubject, subject)
}

// SubjectFromContext returns the subject set by the authn middleware.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxKeySubject).(string)
	return s, ok && s != ""
}
