// Package router keeps an in-app navigation stack in step with the single
// address fragment and dispatches views.
//
// Three sources drive the router: explicit navigation (NavigateTo, Go),
// the in-app back affordance (Back) and changes to the fragment made
// outside the router (native back/forward, deep links). Every request is
// queued and handled by one loop goroutine (Run or Drain), so the stack,
// the pending dispatch and the view context are only touched there.
//
// Dispatch is a two-step pipeline. When the fragment settles on a path the
// router resolves it to a Route, calls Dispatcher.Prepare at once, and
// schedules Dispatcher.Dispatch after a short loading delay. Scheduling a
// newer dispatch stops the pending timer and cancels the previous view's
// context, so views never render out of order.
//
// Fragment handling:
//
//   - empty fragment: reset to the default route
//   - fragment equal to the stack top: internal transition, dispatch as is
//   - anything else: the fragment was changed outside the router; the
//     stack is reset to a single entry for that fragment
//
// A fragment event is ignored when the address has already moved on by
// the time it is handled; a later event for the newer value is queued.
package router
