package gqlapi

import (
	"context"

	"github.com/pabloleguizamon/dragon-challenge/internal/service"
)

// resolverError is what resolvers hand back to graphql-go; its extensions
// end up under errors[].extensions in the response.
type resolverError struct {
	msg string
	ext map[string]interface{}
	err error
}

func (e *resolverError) Error() string                      { return e.msg }
func (e *resolverError) Unwrap() error                      { return e.err }
func (e *resolverError) Extensions() map[string]interface{} { return e.ext }

func (r *Resolver) fail(ctx context.Context, err error) error {
	code := service.Code(err)
	out := &resolverError{msg: err.Error(), err: err, ext: map[string]interface{}{"code": code}}
	if code == service.CodeInternal {
		r.log.ErrorContext(ctx, "graphql resolver failed", "err", err)
		out.msg = "internal error"
		return out
	}
	for k, v := range service.Details(err) {
		out.ext[k] = v
	}
	return out
}
