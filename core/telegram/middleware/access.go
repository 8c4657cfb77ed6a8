package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	// AdminIDs is the static allow-list of administrator identities.
	AdminIDs []int64
	OnReject tele.HandlerFunc
}

// Allowed reports whether the user is listed as an administrator.
func (o AdminOptions) Allowed(userID int64) bool {
	for _, id := range o.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// AdminOnlyMiddleware ensures that only allow-listed users can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if len(opts.AdminIDs) > 0 && !opts.Allowed(c.Sender().ID) {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
