package finance

import "context"

// PostHook extends payment posting. Hooks run after the base posting has
// succeeded and inside the same transaction; an error rolls the post back.
type PostHook interface {
	AfterPost(ctx context.Context, payment *Payment) error
}

// PostHookFunc adapts a function to PostHook
type PostHookFunc func(ctx context.Context, payment *Payment) error

// AfterPost calls f
func (f PostHookFunc) AfterPost(ctx context.Context, payment *Payment) error {
	return f(ctx, payment)
}

// PostHooks runs hooks in order and stops at the first error
type PostHooks []PostHook

// AfterPost implements PostHook
func (hs PostHooks) AfterPost(ctx context.Context, payment *Payment) error {
	for _, h := range hs {
		if err := h.AfterPost(ctx, payment); err != nil {
			return err
		}
	}
	return nil
}
